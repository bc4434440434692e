package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroinnova-backend/internal/models"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name       string
		input      models.UserRegistration
		wantFields []string
	}{
		{
			name:  "valid registration",
			input: models.UserRegistration{Username: "juan_perez", Email: "juan@example.com", Password: "Secreta123"},
		},
		{
			name:       "weak password",
			input:      models.UserRegistration{Username: "juan", Email: "juan@example.com", Password: "secreta123"},
			wantFields: []string{"password"},
		},
		{
			name:       "bad username and email",
			input:      models.UserRegistration{Username: "ju an", Email: "nope", Password: "Secreta123"},
			wantFields: []string{"username", "email"},
		},
		{
			name:       "admin cannot self register",
			input:      models.UserRegistration{Username: "juan", Email: "juan@example.com", Password: "Secreta123", Role: "admin"},
			wantFields: []string{"rol"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			verrs, ok := err.(ValidationErrors)
			require.True(t, ok)
			var fields []string
			for _, e := range verrs {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestEnumMessageIsSpanish(t *testing.T) {
	err := ValidateStruct(models.UpdateStatusRequest{UserID: 1, Status: "Suspendido"})
	require.Error(t, err)
	verrs := err.(ValidationErrors)
	require.Len(t, verrs, 1)
	assert.Equal(t, "status", verrs[0].Field)
	assert.Contains(t, verrs[0].Message, "Activado, Desactivado")
}

func TestEnumAcceptsValuesWithSpaces(t *testing.T) {
	req := models.ProductiveInfoRequest{
		EconomicActivity:      "Agropecuaria",
		AgroIncomePercentage:  "Más de 75%",
		AutoconsumoPercentage: "0-25%",
		ConsumptionFrequency:  "Rara vez",
		ConsumptionChange:     "Se ha mantenido",
	}
	assert.NoError(t, ValidateStruct(req))
}

func TestSocioDemographicConditionalFields(t *testing.T) {
	base := models.SocioDemographicRequest{
		ResidenceYears:     intPtr(4),
		ResidenceMonths:    intPtr(0),
		SelfIdentification: "Campesino(a)",
		EthnicGroup:        "Ninguno",
		HasDisability:      boolPtr(false),
		ConflictVictim:     boolPtr(false),
		EducationLevel:     "Primaria",
	}
	assert.NoError(t, ValidateStruct(base))

	otro := base
	otro.SelfIdentification = "Otro"
	err := ValidateStruct(otro)
	require.Error(t, err)
	assert.Equal(t, "otherIdentification", err.(ValidationErrors)[0].Field)

	disabled := base
	disabled.HasDisability = boolPtr(true)
	err = ValidateStruct(disabled)
	require.Error(t, err)
	assert.Equal(t, "disabilityDetail", err.(ValidationErrors)[0].Field)

	missing := base
	missing.ConflictVictim = nil
	err = ValidateStruct(missing)
	require.Error(t, err)
	assert.Equal(t, "conflictVictim", err.(ValidationErrors)[0].Field)
}

func TestFamilyCompositionRequiresMembers(t *testing.T) {
	req := models.FamilyCompositionRequest{
		PersonsInHome:    intPtr(3),
		DependentPersons: intPtr(1),
		WorkingPersons:   intPtr(2),
		PredominantLabor: "Familiar",
	}
	err := ValidateStruct(req)
	require.Error(t, err)
	assert.Equal(t, "familyMembers", err.(ValidationErrors)[0].Field)

	req.FamilyMembers = []models.FamilyMemberRequest{{
		Relationship:   "Hija",
		Gender:         "Mujer",
		Age:            intPtr(12),
		EducationLevel: "Primaria",
	}}
	assert.NoError(t, ValidateStruct(req))

	req.FamilyMembers[0].Gender = "Otro género"
	err = ValidateStruct(req)
	require.Error(t, err)
	assert.Equal(t, "familyMembers[0].gender", err.(ValidationErrors)[0].Field)
}

func TestMainProductsNeedExactlyFive(t *testing.T) {
	qty := 10.0
	product := models.MainProductRequest{ProductName: "Café", AverageMonthlyQuantity: &qty, Unit: "kg"}

	req := models.MainProductsRequest{Products: []models.MainProductRequest{product, product, product}}
	assert.Error(t, ValidateStruct(req))

	req.Products = append(req.Products, product, product)
	assert.NoError(t, ValidateStruct(req))
}

func TestBirthDate(t *testing.T) {
	_, err := ParseBirthDate("1990-05-10")
	assert.NoError(t, err)

	_, err = ParseBirthDate("10/05/1990")
	assert.Error(t, err)

	_, err = ParseBirthDate(time.Now().AddDate(1, 0, 0).Format(models.BirthDateLayout))
	assert.Error(t, err)
}

func TestDecimalPositive(t *testing.T) {
	assert.NoError(t, ValidateStruct(models.CreateProductRequest{Name: "Queso", Price: "12.50"}))
	assert.Error(t, ValidateStruct(models.CreateProductRequest{Name: "Queso", Price: "0"}))
	assert.Error(t, ValidateStruct(models.CreateProductRequest{Name: "Queso", Price: "doce"}))
}

func TestIsPhoneNumber(t *testing.T) {
	assert.True(t, IsPhoneNumber("+57 300 123 4567"))
	assert.True(t, IsPhoneNumber("3001234567"))
	assert.False(t, IsPhoneNumber("12ab"))
	assert.False(t, IsPhoneNumber("+1234"))
}
