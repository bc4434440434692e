package models

import (
	"time"
)

// Accepted values for zone enums
var (
	ZoneTypes = []string{"municipio", "departamento", "vereda", "ciudad"}
	Climates  = []string{"frio", "calido"}
)

// DefaultIndicatorColor is the color of a freshly created indicator
const DefaultIndicatorColor = "white"

// Zone represents a geographic zone a campiamigo belongs to
type Zone struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	TipoZona         string    `json:"tipoZona" db:"tipo_zona"`
	Description      string    `json:"description" db:"description"`
	Climate          string    `json:"climate" db:"climate"`
	DepartamentoName string    `json:"departamentoName" db:"departamento_name"`
	CityImage        string    `json:"cityImage" db:"city_image"`
	ZoneImage        string    `json:"zoneImage" db:"zone_image"`
	Video            string    `json:"video" db:"video"`
	ModelPath        string    `json:"modelPath" db:"model_path"`
	TitleGlb         string    `json:"titleGlb" db:"title_glb"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`

	Profiles []ZoneProfile `json:"profiles,omitempty" db:"-"`
}

// ZoneProfile is the short profile reference listed under a zone
type ZoneProfile struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"userId" db:"user_id"`
}

// ZoneAssets holds stored keys of the files uploaded with a zone
type ZoneAssets struct {
	CityImage string
	ZoneImage string
	Video     string
	ModelPath string
	TitleGlb  string
}

// CreateZoneRequest is the multipart body of POST /campiamigo/zone
type CreateZoneRequest struct {
	Name             string `form:"name" json:"name" validate:"required,notblank,max=100"`
	TipoZona         string `form:"tipoZona" json:"tipoZona" validate:"required,enum=tipoZona"`
	Description      string `form:"description" json:"description" validate:"max=1000"`
	Climate          string `form:"climate" json:"climate" validate:"required,enum=climate"`
	DepartamentoName string `form:"departamentoName" json:"departamentoName" validate:"required,notblank,max=100"`
}

// AssignZoneRequest is the body of PUT /campiamigo/zone/:id
type AssignZoneRequest struct {
	Name             string `json:"name" validate:"required,notblank,max=100"`
	TipoZona         string `json:"tipoZona" validate:"required,enum=tipoZona"`
	Description      string `json:"description" validate:"max=1000"`
	Climate          string `json:"climate" validate:"required,enum=climate"`
	DepartamentoName string `json:"departamentoName" validate:"required,notblank,max=100"`
}

// ZoneFilter narrows GET /campiamigo/zones
type ZoneFilter struct {
	Climate          string `form:"climate"`
	DepartamentoName string `form:"departamentoName"`
	TipoZona         string `form:"tipoZona"`
	Description      string `form:"description"`
}

// Indicator is the 3D marker of a campiamigo profile on its zone map
type Indicator struct {
	ID        int64     `json:"id" db:"id"`
	ZoneID    int64     `json:"zoneId" db:"zone_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	UpdatedBy *int64    `json:"updatedBy" db:"updated_by"`
	Color     string    `json:"color" db:"color"`
	X         float64   `json:"x" db:"x"`
	Y         float64   `json:"y" db:"y"`
	Z         float64   `json:"z" db:"z"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Zone    *Zone             `json:"zone,omitempty" db:"-"`
	Profile *IndicatorProfile `json:"profile,omitempty" db:"-"`
}

// IndicatorProfile is the profile graph returned with an indicator
type IndicatorProfile struct {
	Profile
	Auth *IndicatorOwner `json:"auth,omitempty"`
}

// IndicatorOwner is the account behind an indicator along with its products
type IndicatorOwner struct {
	ID       int64     `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
	Email    string    `json:"email" db:"email"`
	Products []Product `json:"products"`
}

// IndicatorColorRequest is the body of PUT /campiamigo/indicator/:userId/color
type IndicatorColorRequest struct {
	Color     string `json:"color" validate:"required,notblank,max=30"`
	UpdatedBy *int64 `json:"updatedBy" validate:"omitempty,gt=0"`
}

// IndicatorPositionRequest is the body of PUT /campiamigo/indicator/:userId/position
type IndicatorPositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
	Z *float64 `json:"z" validate:"required"`
}

// IndicatorEvent is pushed to websocket subscribers when an indicator changes
type IndicatorEvent struct {
	Type      string     `json:"type"`
	Indicator *Indicator `json:"indicator"`
}

// IndicatorUpdatedEvent is the event type for color and position changes
const IndicatorUpdatedEvent = "indicator.updated"
