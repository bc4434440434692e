package main

import "agroinnova-backend/cmd"

func main() {
	cmd.Execute()
}
