package database

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
)

//go:embed seeds/*.yaml
var seedFiles embed.FS

type countrySeed struct {
	Name      string `yaml:"name"`
	Code      string `yaml:"code"`
	PhoneCode string `yaml:"phone_code"`
}

type subtipoSeed struct {
	Nombre      string `yaml:"nombre"`
	Descripcion string `yaml:"descripcion"`
}

type tipoSeed struct {
	Nombre      string        `yaml:"nombre"`
	Descripcion string        `yaml:"descripcion"`
	Subtipos    []subtipoSeed `yaml:"subtipos"`
}

// SeedResult counts rows inserted by Seed
type SeedResult struct {
	Countries int
	Tipos     int
	Subtipos  int
}

func loadSeed(name string, out interface{}) error {
	raw, err := seedFiles.ReadFile("seeds/" + name)
	if err != nil {
		return fmt.Errorf("failed to read seed %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse seed %s: %w", name, err)
	}
	return nil
}

// Seed inserts reference data. Existing rows are left untouched, so it is safe to rerun.
func Seed(db *sqlx.DB) (SeedResult, error) {
	var result SeedResult

	var countries struct {
		Countries []countrySeed `yaml:"countries"`
	}
	if err := loadSeed("countries.yaml", &countries); err != nil {
		return result, err
	}
	var denuncias struct {
		Tipos []tipoSeed `yaml:"tipos"`
	}
	if err := loadSeed("denuncias.yaml", &denuncias); err != nil {
		return result, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return result, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range countries.Countries {
		res, err := tx.Exec(`INSERT OR IGNORE INTO countries (name, code, phone_code) VALUES (?, ?, ?)`,
			c.Name, c.Code, c.PhoneCode)
		if err != nil {
			return result, fmt.Errorf("failed to seed country %s: %w", c.Name, err)
		}
		result.Countries += affected(res)
	}

	for _, t := range denuncias.Tipos {
		res, err := tx.Exec(`INSERT OR IGNORE INTO tipo_denuncia (nombre, descripcion) VALUES (?, ?)`,
			t.Nombre, t.Descripcion)
		if err != nil {
			return result, fmt.Errorf("failed to seed tipo %s: %w", t.Nombre, err)
		}
		result.Tipos += affected(res)

		var tipoID int64
		if err := tx.Get(&tipoID, `SELECT id FROM tipo_denuncia WHERE nombre = ?`, t.Nombre); err != nil {
			return result, fmt.Errorf("failed to load tipo %s: %w", t.Nombre, err)
		}
		for _, s := range t.Subtipos {
			res, err := tx.Exec(`INSERT OR IGNORE INTO subtipo_denuncia (nombre, descripcion, tipo_denuncia_id) VALUES (?, ?, ?)`,
				s.Nombre, s.Descripcion, tipoID)
			if err != nil {
				return result, fmt.Errorf("failed to seed subtipo %s: %w", s.Nombre, err)
			}
			result.Subtipos += affected(res)
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit seed: %w", err)
	}
	return result, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func affected(res rowsAffecter) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
