package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/testutil"
)

func newDenunciaService(t *testing.T) *DenunciaService {
	t.Helper()
	storage := NewLocalStorage(t.TempDir(), "http://localhost:2020/uploads")
	return NewDenunciaService(testutil.NewTestDB(t), NewUploader(storage, 1<<20), nil)
}

func TestSeededCategories(t *testing.T) {
	svc := newDenunciaService(t)
	ctx := context.Background()

	tipos, err := svc.ListTipos(ctx)
	require.NoError(t, err)
	require.Len(t, tipos, 3)
	assert.Equal(t, "Ambiental", tipos[0].Nombre)

	all, err := svc.ListSubtipos(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	ambiental, err := svc.ListSubtipos(ctx, tipos[0].ID)
	require.NoError(t, err)
	assert.Len(t, ambiental, 3)
}

func TestCreateTipoAndSubtipo(t *testing.T) {
	svc := newDenunciaService(t)
	ctx := context.Background()

	tipo, err := svc.CreateTipo(ctx, &models.CreateTipoDenunciaRequest{Nombre: " Laboral ", Descripcion: "Trabajo rural"},
		testutil.FileHeader(t, "bandera.png", testutil.PNG))
	require.NoError(t, err)
	assert.Equal(t, "Laboral", tipo.Nombre)
	assert.Contains(t, tipo.FlagImage, "tipoDenuncias/bandera-")
	assert.Equal(t, "http://localhost:2020/uploads/"+tipo.FlagImage, tipo.ImageURL)

	_, err = svc.CreateTipo(ctx, &models.CreateTipoDenunciaRequest{Nombre: "Laboral"}, nil)
	assert.ErrorIs(t, err, ErrTipoExists)

	sub, err := svc.CreateSubtipo(ctx, &models.CreateSubtipoDenunciaRequest{Nombre: "Jornadas", TipoDenunciaID: tipo.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, tipo.ID, sub.TipoDenunciaID)
	assert.Empty(t, sub.ImageURL)

	_, err = svc.CreateSubtipo(ctx, &models.CreateSubtipoDenunciaRequest{Nombre: "Jornadas", TipoDenunciaID: tipo.ID}, nil)
	assert.ErrorIs(t, err, ErrSubtipoExists)
	_, err = svc.CreateSubtipo(ctx, &models.CreateSubtipoDenunciaRequest{Nombre: "Jornadas", TipoDenunciaID: 999}, nil)
	assert.ErrorIs(t, err, ErrTipoNotFound)
}

func TestAnonymousDenunciaLifecycle(t *testing.T) {
	svc := newDenunciaService(t)
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	assert.ErrorIs(t, err, ErrNoDenuncias)

	subtipos, err := svc.ListSubtipos(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, subtipos)

	clave, err := svc.Create(ctx, &models.CreateDenunciaRequest{
		Descripcion:       "Vertimientos en la quebrada",
		Direccion:         "Vereda El Salitre",
		TipoDenunciaID:    1,
		SubtipoDenunciaID: subtipos[0].ID,
	}, []*multipart.FileHeader{
		testutil.FileHeader(t, "foto.png", testutil.PNG),
		testutil.FileHeader(t, "clip.mp4", testutil.MP4),
	}, nil)
	require.NoError(t, err)
	require.Len(t, clave, 36)

	consulta, err := svc.Consulta(ctx, clave)
	require.NoError(t, err)
	assert.Equal(t, models.DenunciaStatusPending, consulta.Status)
	assert.Equal(t, "Ambiental", consulta.TipoDenuncia)
	assert.Equal(t, subtipos[0].Nombre, consulta.SubtipoDenuncia)
	require.Len(t, consulta.Pruebas, 2)
	assert.Equal(t, "image", consulta.Pruebas[0].Type)
	assert.Contains(t, consulta.Pruebas[0].URL, "evidenciasDenuncias/imagenes/foto-")
	assert.Equal(t, "video", consulta.Pruebas[1].Type)
	assert.Contains(t, consulta.Pruebas[1].URL, "evidenciasDenuncias/videos/clip-")
	assert.Empty(t, consulta.Audio)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].TieneEvidencia)

	updated, err := svc.UpdateStatus(ctx, all[0].ID, models.DenunciaStatusReviewing)
	require.NoError(t, err)
	assert.Equal(t, models.DenunciaStatusReviewing, updated.Status)

	_, err = svc.UpdateStatus(ctx, 999, models.DenunciaStatusResolved)
	assert.ErrorIs(t, err, ErrDenunciaNotFound)
	_, err = svc.Consulta(ctx, "no-existe")
	assert.ErrorIs(t, err, ErrDenunciaNotFound)
}

func TestCreateDenunciaRejectsForeignSubtipo(t *testing.T) {
	svc := newDenunciaService(t)
	ctx := context.Background()

	seguridad, err := svc.ListSubtipos(ctx, 2)
	require.NoError(t, err)
	require.NotEmpty(t, seguridad)

	_, err = svc.Create(ctx, &models.CreateDenunciaRequest{
		Descripcion: "x", TipoDenunciaID: 1, SubtipoDenunciaID: seguridad[0].ID,
	}, nil, nil)
	assert.ErrorIs(t, err, ErrSubtipoMismatch)

	_, err = svc.Create(ctx, &models.CreateDenunciaRequest{Descripcion: "x", TipoDenunciaID: 1, SubtipoDenunciaID: 999}, nil, nil)
	assert.ErrorIs(t, err, ErrSubtipoNotFound)

	_, err = svc.Create(ctx, &models.CreateDenunciaRequest{Descripcion: "x", TipoDenunciaID: 999}, nil, nil)
	assert.ErrorIs(t, err, ErrTipoNotFound)

	clave, err := svc.Create(ctx, &models.CreateDenunciaRequest{Descripcion: "Sin evidencia", TipoDenunciaID: 2}, nil, nil)
	require.NoError(t, err)
	consulta, err := svc.Consulta(ctx, clave)
	require.NoError(t, err)
	assert.Empty(t, consulta.Pruebas)
	assert.Empty(t, consulta.SubtipoDenuncia)
}

func TestCreateDenunciaRemovesEvidenceOnFailure(t *testing.T) {
	root := t.TempDir()
	svc := NewDenunciaService(testutil.NewTestDB(t), NewUploader(NewLocalStorage(root, "http://localhost:2020/uploads"), 1<<20), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.CreateDenunciaRequest{Descripcion: "Tala ilegal", TipoDenunciaID: 1},
		[]*multipart.FileHeader{
			testutil.FileHeader(t, "image.png", testutil.PNG),
			testutil.FileHeader(t, "image.png", testutil.PNG),
		},
		testutil.FileHeader(t, "nota.exe", []byte("MZ")))
	require.ErrorIs(t, err, ErrInvalidFile)
	assert.Zero(t, testutil.CountFiles(t, root))

	_, err = svc.Create(ctx, &models.CreateDenunciaRequest{Descripcion: "Tala ilegal", TipoDenunciaID: 1},
		[]*multipart.FileHeader{
			testutil.FileHeader(t, "image.png", testutil.PNG),
			testutil.FileHeader(t, "image.png", []byte("texto plano")),
		}, nil)
	require.ErrorIs(t, err, ErrInvalidFile)
	assert.Zero(t, testutil.CountFiles(t, root))

	clave, err := svc.Create(ctx, &models.CreateDenunciaRequest{Descripcion: "Tala ilegal", TipoDenunciaID: 1},
		[]*multipart.FileHeader{
			testutil.FileHeader(t, "image.png", testutil.PNG),
			testutil.FileHeader(t, "image.png", testutil.PNG),
		}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, testutil.CountFiles(t, root))

	consulta, err := svc.Consulta(ctx, clave)
	require.NoError(t, err)
	require.Len(t, consulta.Pruebas, 2)
	assert.NotEqual(t, consulta.Pruebas[0].URL, consulta.Pruebas[1].URL)
}
