package models

import (
	"strings"
	"time"
)

// DenunciaStatus is the lifecycle state of an anonymous complaint
type DenunciaStatus string

const (
	DenunciaStatusPending   DenunciaStatus = "pendiente"
	DenunciaStatusReviewing DenunciaStatus = "en revisión"
	DenunciaStatusResolved  DenunciaStatus = "resuelta"
	DenunciaStatusRejected  DenunciaStatus = "rechazada"
)

// DenunciaStatuses lists every accepted complaint status
var DenunciaStatuses = []string{
	string(DenunciaStatusPending),
	string(DenunciaStatusReviewing),
	string(DenunciaStatusResolved),
	string(DenunciaStatusRejected),
}

// TipoDenuncia is a complaint category
type TipoDenuncia struct {
	ID          int64     `json:"id" db:"id"`
	Nombre      string    `json:"nombre" db:"nombre"`
	Descripcion string    `json:"descripcion" db:"descripcion"`
	FlagImage   string    `json:"flagImage" db:"flag_image"`
	ImageURL    string    `json:"imageUrl" db:"-"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// SubtipoDenuncia is a complaint subcategory
type SubtipoDenuncia struct {
	ID             int64     `json:"id" db:"id"`
	Nombre         string    `json:"nombre" db:"nombre"`
	Descripcion    string    `json:"descripcion" db:"descripcion"`
	FlagImage      string    `json:"flagImage" db:"flag_image"`
	ImageURL       string    `json:"imageUrl" db:"-"`
	TipoDenunciaID int64     `json:"tipoDenunciaId" db:"tipo_denuncia_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// DenunciaAnonima is a complaint filed without reporter identity
type DenunciaAnonima struct {
	ID                int64          `json:"id" db:"id"`
	Descripcion       string         `json:"descripcion" db:"descripcion"`
	Direccion         string         `json:"direccion" db:"direccion"`
	Status            DenunciaStatus `json:"status" db:"status"`
	ClaveUnica        string         `json:"claveUnica" db:"clave_unica"`
	Pruebas           string         `json:"pruebas" db:"pruebas"`
	Audio             string         `json:"audio" db:"audio"`
	TieneEvidencia    bool           `json:"tieneEvidencia" db:"tiene_evidencia"`
	TipoDenunciaID    int64          `json:"tipoDenunciaId" db:"tipo_denuncia_id"`
	SubtipoDenunciaID *int64         `json:"subtipoDenunciaId" db:"subtipo_denuncia_id"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time      `json:"updatedAt" db:"updated_at"`

	TipoNombre    string `json:"tipoDenuncia,omitempty" db:"tipo_nombre"`
	SubtipoNombre string `json:"subtipoDenuncia,omitempty" db:"subtipo_nombre"`

	Evidencias []Prueba `json:"evidencias,omitempty" db:"-"`
	AudioURL   string   `json:"audioUrl,omitempty" db:"-"`
}

// PruebaKeys splits the stored comma-separated evidence keys
func (d *DenunciaAnonima) PruebaKeys() []string {
	if d.Pruebas == "" {
		return []string{}
	}
	parts := strings.Split(d.Pruebas, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// Prueba is one piece of evidence returned by the public lookup
type Prueba struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// DenunciaConsulta is the public view of a complaint looked up by its key
type DenunciaConsulta struct {
	Descripcion        string         `json:"descripcion"`
	Direccion          string         `json:"direccion"`
	Status             DenunciaStatus `json:"status"`
	TipoDenuncia       string         `json:"tipoDenuncia"`
	SubtipoDenuncia    string         `json:"subtipoDenuncia"`
	Pruebas            []Prueba       `json:"pruebas"`
	Audio              string         `json:"audio"`
	FechaCreacion      time.Time      `json:"fechaCreacion"`
	FechaActualizacion time.Time      `json:"fechaActualizacion"`
}

// CreateTipoDenunciaRequest holds the text fields of the tipo multipart form
type CreateTipoDenunciaRequest struct {
	Nombre      string `form:"nombre" json:"nombre" validate:"required,notblank,max=100"`
	Descripcion string `form:"descripcion" json:"descripcion" validate:"max=1000"`
}

// CreateSubtipoDenunciaRequest holds the text fields of the subtipo multipart form
type CreateSubtipoDenunciaRequest struct {
	Nombre         string `form:"nombre" json:"nombre" validate:"required,notblank,max=100"`
	Descripcion    string `form:"descripcion" json:"descripcion" validate:"max=1000"`
	TipoDenunciaID int64  `form:"tipoDenunciaId" json:"tipoDenunciaId" validate:"required,gt=0"`
}

// CreateDenunciaRequest holds the text fields of the anonymous complaint form
type CreateDenunciaRequest struct {
	Descripcion       string `form:"descripcion" json:"descripcion" validate:"required,notblank,max=5000"`
	Direccion         string `form:"direccion" json:"direccion" validate:"max=255"`
	TipoDenunciaID    int64  `form:"tipoDenunciaId" json:"tipoDenunciaId" validate:"required,gt=0"`
	SubtipoDenunciaID int64  `form:"subtipoDenunciaId" json:"subtipoDenunciaId" validate:"omitempty,gt=0"`
}

// DenunciaEvidence holds stored keys of the files attached to a complaint
type DenunciaEvidence struct {
	Pruebas []string
	Audio   string
}

// UpdateDenunciaStatusRequest is the body of PUT /denuncias/anonimas/:id/status
type UpdateDenunciaStatusRequest struct {
	Status string `json:"status" validate:"required,enum=denunciaStatus"`
}
