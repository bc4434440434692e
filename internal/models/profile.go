package models

import (
	"time"
)

// ProfileStatus represents the review state of a profile
type ProfileStatus string

const (
	ProfileStatusPending  ProfileStatus = "pendiente"
	ProfileStatusApproved ProfileStatus = "aprobado"
	ProfileStatusRejected ProfileStatus = "rechazado"
)

// Accepted values for profile enums
var (
	IdentificationTypes = []string{"Cédula", "Tarjeta de Identidad", "DNI", "Pasaporte", "Licencia de Conducir", "Otro"}
	Genders             = []string{"Mujer", "Hombre", "Otro género", "Prefiero no declarar"}
)

// BirthDateLayout is the storage and wire format of birth dates
const BirthDateLayout = "2006-01-02"

// Profile represents a user_profile row
type Profile struct {
	ID                   int64         `json:"id" db:"id"`
	UserID               int64         `json:"userId" db:"user_id"`
	ProfilePicture       string        `json:"profilePicture" db:"profile_picture"`
	FirstName            string        `json:"firstName" db:"first_name"`
	LastName             string        `json:"lastName" db:"last_name"`
	IdentificationType   string        `json:"identificationType" db:"identification_type"`
	IdentificationNumber string        `json:"identificationNumber" db:"identification_number"`
	Biography            string        `json:"biography" db:"biography"`
	Direccion            string        `json:"direccion" db:"direccion"`
	BirthDate            string        `json:"birthDate" db:"birth_date"`
	Gender               string        `json:"gender" db:"gender"`
	Status               ProfileStatus `json:"status" db:"status"`
	Campiamigo           bool          `json:"campiamigo" db:"campiamigo"`
	ZoneID               *int64        `json:"zoneId" db:"zone_id"`
	CreatedAt            time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time     `json:"updatedAt" db:"updated_at"`

	Zone *Zone `json:"zone,omitempty" db:"-"`
	Tags []Tag `json:"tags,omitempty" db:"-"`
}

// HasIdentification reports whether personal data was already captured
func (p *Profile) HasIdentification() bool {
	return p.IdentificationNumber != ""
}

// ProfileUpdate is the multipart body of PUT /user/update-profile
type ProfileUpdate struct {
	FirstName            string `form:"firstName" json:"firstName" validate:"required,notblank,max=100"`
	LastName             string `form:"lastName" json:"lastName" validate:"required,notblank,max=100"`
	IdentificationType   string `form:"identificationType" json:"identificationType" validate:"required,enum=identificationType"`
	IdentificationNumber string `form:"identificationNumber" json:"identificationNumber" validate:"required,notblank,max=30"`
	BirthDate            string `form:"birthDate" json:"birthDate" validate:"required,birthdate"`
	Gender               string `form:"gender" json:"gender" validate:"required,enum=gender"`
	Biography            string `form:"biography" json:"biography" validate:"max=1000"`
	Direccion            string `form:"direccion" json:"direccion" validate:"max=255"`
	Campiamigo           string `form:"campiamigo" json:"campiamigo" validate:"omitempty,oneof=true false 1 0"`
}

// MinimalProfileUpdate is the multipart body of PUT /user/update-minimal-profile
type MinimalProfileUpdate struct {
	FirstName string `form:"firstName" json:"firstName" validate:"required,notblank,max=100"`
	LastName  string `form:"lastName" json:"lastName" validate:"required,notblank,max=100"`
}

// AdminProfileUpdate is the body of PUT /admin/profile/:id
type AdminProfileUpdate struct {
	FirstName            string `form:"firstName" json:"firstName" validate:"required,notblank,max=100"`
	LastName             string `form:"lastName" json:"lastName" validate:"required,notblank,max=100"`
	BirthDate            string `form:"birthDate" json:"birthDate" validate:"required,birthdate"`
	Gender               string `form:"gender" json:"gender" validate:"required,enum=gender"`
	IdentificationType   string `form:"identificationType" json:"identificationType" validate:"omitempty,enum=identificationType"`
	IdentificationNumber string `form:"identificationNumber" json:"identificationNumber" validate:"max=30"`
	Campiamigo           *bool  `form:"campiamigo" json:"campiamigo"`
}

// Tag is a label attached to a profile
type Tag struct {
	ID        int64     `json:"id" db:"id"`
	ProfileID int64     `json:"profileId" db:"profile_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DefaultTagColor is used when a tag is created without a color
const DefaultTagColor = "#4caf50"

// CreateTagRequest is the body of POST /campiamigo/tag/:id
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=60"`
	Color string `json:"color" validate:"omitempty,max=30"`
}
