package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/utils"
)

const (
	tipoColumns = `t.id, t.nombre, COALESCE(t.descripcion, '') AS descripcion,
		COALESCE(t.flag_image, '') AS flag_image, t.created_at, t.updated_at`
	subtipoColumns = `s.id, s.nombre, COALESCE(s.descripcion, '') AS descripcion,
		COALESCE(s.flag_image, '') AS flag_image, s.tipo_denuncia_id, s.created_at, s.updated_at`
	denunciaSelect = `SELECT d.id, d.descripcion, COALESCE(d.direccion, '') AS direccion, d.status,
		d.clave_unica, COALESCE(d.pruebas, '') AS pruebas, COALESCE(d.audio, '') AS audio,
		d.tiene_evidencia, d.tipo_denuncia_id, d.subtipo_denuncia_id, d.created_at, d.updated_at,
		t.nombre AS tipo_nombre, COALESCE(s.nombre, '') AS subtipo_nombre
		FROM denuncias_anonimas d
		INNER JOIN tipo_denuncia t ON t.id = d.tipo_denuncia_id
		LEFT JOIN subtipo_denuncia s ON s.id = d.subtipo_denuncia_id`
)

// DenunciaService handles complaint categories and anonymous complaints
type DenunciaService struct {
	db       *sqlx.DB
	uploader *Uploader
	log      *zap.Logger
}

// NewDenunciaService creates a new denuncia service
func NewDenunciaService(db *sqlx.DB, uploader *Uploader, log *zap.Logger) *DenunciaService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DenunciaService{db: db, uploader: uploader, log: log}
}

func (s *DenunciaService) tipoByID(ctx context.Context, id int64) (*models.TipoDenuncia, error) {
	var t models.TipoDenuncia
	if err := s.db.GetContext(ctx, &t, `SELECT `+tipoColumns+` FROM tipo_denuncia t WHERE t.id = ?`, id); err != nil {
		return nil, notFound(err, ErrTipoNotFound)
	}
	t.ImageURL = s.uploader.URL(t.FlagImage)
	return &t, nil
}

// CreateTipo adds a complaint category with an optional flag image
func (s *DenunciaService) CreateTipo(ctx context.Context, req *models.CreateTipoDenunciaRequest, flag *multipart.FileHeader) (*models.TipoDenuncia, error) {
	nombre := strings.TrimSpace(req.Nombre)
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tipo_denuncia WHERE nombre = ?`, nombre); err != nil {
		return nil, fmt.Errorf("failed to check tipo: %w", err)
	}
	if count > 0 {
		return nil, ErrTipoExists
	}

	batch := s.uploader.Batch(s.log)
	created := false
	defer func() {
		if !created {
			batch.Discard(ctx)
		}
	}()

	flagKey := ""
	if flag != nil {
		var err error
		if flagKey, err = batch.Store(ctx, flag, KindImage, "tipoDenuncias"); err != nil {
			return nil, err
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tipo_denuncia (nombre, descripcion, flag_image) VALUES (?, ?, ?)`,
		nombre, utils.NullIfEmpty(req.Descripcion), utils.NullIfEmpty(flagKey))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTipoExists
		}
		return nil, fmt.Errorf("failed to create tipo: %w", err)
	}
	created = true
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read tipo id: %w", err)
	}
	return s.tipoByID(ctx, id)
}

// CreateSubtipo adds a subcategory under an existing tipo
func (s *DenunciaService) CreateSubtipo(ctx context.Context, req *models.CreateSubtipoDenunciaRequest, flag *multipart.FileHeader) (*models.SubtipoDenuncia, error) {
	if _, err := s.tipoByID(ctx, req.TipoDenunciaID); err != nil {
		return nil, err
	}

	nombre := strings.TrimSpace(req.Nombre)
	var count int
	if err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM subtipo_denuncia WHERE nombre = ? AND tipo_denuncia_id = ?`,
		nombre, req.TipoDenunciaID); err != nil {
		return nil, fmt.Errorf("failed to check subtipo: %w", err)
	}
	if count > 0 {
		return nil, ErrSubtipoExists
	}

	batch := s.uploader.Batch(s.log)
	created := false
	defer func() {
		if !created {
			batch.Discard(ctx)
		}
	}()

	flagKey := ""
	if flag != nil {
		var err error
		if flagKey, err = batch.Store(ctx, flag, KindImage, "subtipoDenuncias"); err != nil {
			return nil, err
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO subtipo_denuncia (nombre, descripcion, flag_image, tipo_denuncia_id) VALUES (?, ?, ?, ?)`,
		nombre, utils.NullIfEmpty(req.Descripcion), utils.NullIfEmpty(flagKey), req.TipoDenunciaID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSubtipoExists
		}
		return nil, fmt.Errorf("failed to create subtipo: %w", err)
	}
	created = true
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read subtipo id: %w", err)
	}

	var sub models.SubtipoDenuncia
	if err := s.db.GetContext(ctx, &sub, `SELECT `+subtipoColumns+` FROM subtipo_denuncia s WHERE s.id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to load subtipo: %w", err)
	}
	sub.ImageURL = s.uploader.URL(sub.FlagImage)
	return &sub, nil
}

// ListTipos returns every category with its flag image URL
func (s *DenunciaService) ListTipos(ctx context.Context) ([]models.TipoDenuncia, error) {
	tipos := []models.TipoDenuncia{}
	if err := s.db.SelectContext(ctx, &tipos, `SELECT `+tipoColumns+` FROM tipo_denuncia t ORDER BY t.nombre`); err != nil {
		return nil, fmt.Errorf("failed to list tipos: %w", err)
	}
	for i := range tipos {
		tipos[i].ImageURL = s.uploader.URL(tipos[i].FlagImage)
	}
	return tipos, nil
}

// ListSubtipos returns the subcategories of tipoID, or all of them when tipoID is 0
func (s *DenunciaService) ListSubtipos(ctx context.Context, tipoID int64) ([]models.SubtipoDenuncia, error) {
	query := `SELECT ` + subtipoColumns + ` FROM subtipo_denuncia s`
	var args []interface{}
	if tipoID > 0 {
		query += ` WHERE s.tipo_denuncia_id = ?`
		args = append(args, tipoID)
	}
	query += ` ORDER BY s.nombre`

	subtipos := []models.SubtipoDenuncia{}
	if err := s.db.SelectContext(ctx, &subtipos, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list subtipos: %w", err)
	}
	for i := range subtipos {
		subtipos[i].ImageURL = s.uploader.URL(subtipos[i].FlagImage)
	}
	return subtipos, nil
}

// Create files an anonymous complaint and returns its lookup key. The reporter is not stored.
func (s *DenunciaService) Create(ctx context.Context, req *models.CreateDenunciaRequest, pruebas []*multipart.FileHeader, audio *multipart.FileHeader) (string, error) {
	if _, err := s.tipoByID(ctx, req.TipoDenunciaID); err != nil {
		return "", err
	}

	var subtipoID *int64
	if req.SubtipoDenunciaID > 0 {
		var tipoOfSubtipo int64
		if err := s.db.GetContext(ctx, &tipoOfSubtipo,
			`SELECT tipo_denuncia_id FROM subtipo_denuncia WHERE id = ?`, req.SubtipoDenunciaID); err != nil {
			return "", notFound(err, ErrSubtipoNotFound)
		}
		if tipoOfSubtipo != req.TipoDenunciaID {
			return "", ErrSubtipoMismatch
		}
		subtipoID = &req.SubtipoDenunciaID
	}

	batch := s.uploader.Batch(s.log)
	created := false
	defer func() {
		if !created {
			batch.Discard(ctx)
		}
	}()

	evidence := models.DenunciaEvidence{Pruebas: make([]string, 0, len(pruebas))}
	for _, fh := range pruebas {
		kind := EvidenceKind(fh.Filename)
		dir := "evidenciasDenuncias/imagenes"
		if kind == KindVideo {
			dir = "evidenciasDenuncias/videos"
		}
		key, err := batch.Store(ctx, fh, kind, dir)
		if err != nil {
			return "", err
		}
		evidence.Pruebas = append(evidence.Pruebas, key)
	}
	if audio != nil {
		key, err := batch.Store(ctx, audio, KindAudio, "evidenciasDenuncias/audios")
		if err != nil {
			return "", err
		}
		evidence.Audio = key
	}

	clave := uuid.NewString()
	hasEvidence := len(evidence.Pruebas) > 0 || evidence.Audio != ""
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO denuncias_anonimas (
			descripcion, direccion, status, clave_unica, pruebas, audio, tiene_evidencia,
			tipo_denuncia_id, subtipo_denuncia_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(req.Descripcion), utils.NullIfEmpty(req.Direccion), models.DenunciaStatusPending,
		clave, utils.NullIfEmpty(strings.Join(evidence.Pruebas, ",")), utils.NullIfEmpty(evidence.Audio),
		hasEvidence, req.TipoDenunciaID, subtipoID)
	if err != nil {
		return "", fmt.Errorf("failed to create denuncia: %w", err)
	}
	created = true

	s.log.Info("anonymous denuncia filed", zap.Int64("tipo_id", req.TipoDenunciaID), zap.Bool("evidence", hasEvidence))
	return clave, nil
}

func (s *DenunciaService) withEvidence(d *models.DenunciaAnonima) {
	d.Evidencias = make([]models.Prueba, 0)
	for _, key := range d.PruebaKeys() {
		kind := "image"
		if EvidenceKind(key) == KindVideo {
			kind = "video"
		}
		d.Evidencias = append(d.Evidencias, models.Prueba{Type: kind, URL: s.uploader.URL(key)})
	}
	d.AudioURL = s.uploader.URL(d.Audio)
}

// Consulta looks a complaint up by its key
func (s *DenunciaService) Consulta(ctx context.Context, clave string) (*models.DenunciaConsulta, error) {
	var d models.DenunciaAnonima
	if err := s.db.GetContext(ctx, &d, denunciaSelect+` WHERE d.clave_unica = ?`, strings.TrimSpace(clave)); err != nil {
		return nil, notFound(err, ErrDenunciaNotFound)
	}
	s.withEvidence(&d)

	return &models.DenunciaConsulta{
		Descripcion:        d.Descripcion,
		Direccion:          d.Direccion,
		Status:             d.Status,
		TipoDenuncia:       d.TipoNombre,
		SubtipoDenuncia:    d.SubtipoNombre,
		Pruebas:            d.Evidencias,
		Audio:              d.AudioURL,
		FechaCreacion:      d.CreatedAt,
		FechaActualizacion: d.UpdatedAt,
	}, nil
}

// ListAll returns every complaint for administrators
func (s *DenunciaService) ListAll(ctx context.Context) ([]models.DenunciaAnonima, error) {
	denuncias := []models.DenunciaAnonima{}
	if err := s.db.SelectContext(ctx, &denuncias, denunciaSelect+` ORDER BY d.created_at DESC, d.id DESC`); err != nil {
		return nil, fmt.Errorf("failed to list denuncias: %w", err)
	}
	if len(denuncias) == 0 {
		return nil, ErrNoDenuncias
	}
	for i := range denuncias {
		s.withEvidence(&denuncias[i])
	}
	return denuncias, nil
}

// UpdateStatus moves a complaint through its review states
func (s *DenunciaService) UpdateStatus(ctx context.Context, id int64, status models.DenunciaStatus) (*models.DenunciaAnonima, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE denuncias_anonimas SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update denuncia status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrDenunciaNotFound
	}

	var d models.DenunciaAnonima
	if err := s.db.GetContext(ctx, &d, denunciaSelect+` WHERE d.id = ?`, id); err != nil {
		return nil, notFound(err, ErrDenunciaNotFound)
	}
	s.withEvidence(&d)
	return &d, nil
}
