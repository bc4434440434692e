package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/shopspring/decimal"

	"agroinnova-backend/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var messages []string
	for _, err := range ve {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, ", ")
}

// Messages returns the translated messages only
func (ve ValidationErrors) Messages() []string {
	messages := make([]string, 0, len(ve))
	for _, err := range ve {
		messages = append(messages, err.Message)
	}
	return messages
}

var (
	validate   *validator.Validate
	translator ut.Translator

	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	phoneCleaner  = regexp.MustCompile(`[\s\-\(\)]+`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperRegex    = regexp.MustCompile(`[A-Z]`)
	lowerRegex    = regexp.MustCompile(`[a-z]`)
	digitRegex    = regexp.MustCompile(`\d`)
)

// custom validation tags
const (
	notBlankTag        = "notblank"
	enumTag            = "enum"
	birthDateTag       = "birthdate"
	phoneTag           = "phone"
	usernameTag        = "username"
	passwordTag        = "password"
	decimalPositiveTag = "decimal_positive"
	requiredWhenTag    = "required_when"
)

// enumSets maps the parameter of the enum tag to its accepted values
var enumSets = map[string][]string{
	"role":                 models.AllRoles,
	"selfRegisterRole":     {string(models.UserRoleUser), string(models.UserRoleCampesino), string(models.UserRoleSupervisor)},
	"userStatus":           {string(models.UserStatusActive), string(models.UserStatusInactive)},
	"identificationType":   models.IdentificationTypes,
	"gender":               models.Genders,
	"memberGender":         models.MemberGenders,
	"selfIdentification":   models.SelfIdentifications,
	"ethnicGroup":          models.EthnicGroups,
	"educationLevel":       models.EducationLevels,
	"predominantLabor":     models.PredominantLabors,
	"landType":             models.LandTypes,
	"housingLocation":      models.HousingLocations,
	"route":                models.RouteTypes,
	"waterSource":          models.WaterSources,
	"economicActivity":     models.EconomicActivities,
	"percentage":           models.Percentages,
	"consumptionFrequency": models.ConsumptionFrequences,
	"consumptionChange":    models.ConsumptionChanges,
	"preparationMethod":    models.PreparationMethods,
	"pestControlMethod":    models.PestControlMethods,
	"tipoZona":             models.ZoneTypes,
	"climate":              models.Climates,
	"denunciaStatus":       models.DenunciaStatuses,
}

func init() {
	validate = validator.New()

	spanish := es.New()
	uni := ut.New(spanish, spanish)
	translator, _ = uni.GetTranslator("es")
	_ = es_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names, falling back to form tags.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(enumTag, enumValidation)
	_ = validate.RegisterValidation(birthDateTag, birthDateValidation)
	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	_ = validate.RegisterValidation(usernameTag, usernameValidation)
	_ = validate.RegisterValidation(passwordTag, passwordValidation)
	_ = validate.RegisterValidation(decimalPositiveTag, decimalPositiveValidation)

	validate.RegisterStructValidation(socioDemographicStructValidation, models.SocioDemographicRequest{})
	validate.RegisterStructValidation(familyCompositionStructValidation, models.FamilyCompositionRequest{})

	registerCustomTranslations(notBlankTag, enumTag, birthDateTag, phoneTag, usernameTag,
		passwordTag, decimalPositiveTag, requiredWhenTag)
}

// registerCustomTranslations hooks the custom tags into the Spanish translator.
// The registration func is a noop because messages are built in translateCustom.
func registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fmt.Sprintf("%s no puede estar vacío", fe.Field())
	case enumTag:
		return fmt.Sprintf("%s debe ser uno de: %s", fe.Field(), strings.Join(enumSets[fe.Param()], ", "))
	case birthDateTag:
		return fmt.Sprintf("%s debe ser una fecha válida (AAAA-MM-DD) que no esté en el futuro", fe.Field())
	case phoneTag:
		return fmt.Sprintf("%s debe ser un número de teléfono válido", fe.Field())
	case usernameTag:
		return fmt.Sprintf("%s solo puede contener letras, números, puntos, guiones y guiones bajos", fe.Field())
	case passwordTag:
		return fmt.Sprintf("%s debe contener al menos una mayúscula, una minúscula y un número", fe.Field())
	case decimalPositiveTag:
		return fmt.Sprintf("%s debe ser un número mayor que cero", fe.Field())
	case requiredWhenTag:
		return fmt.Sprintf("%s es obligatorio para la opción seleccionada", fe.Field())
	default:
		return fe.Error()
	}
}

// ValidateStruct validates a struct against its validate tags.
// Field failures come back as ValidationErrors with Spanish messages.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		result = append(result, ValidationError{
			Field:   fieldPath(fe),
			Message: fe.Translate(translator),
		})
	}
	return result
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

// IsEnumValue reports whether value belongs to the named enum set
func IsEnumValue(set, value string) bool {
	for _, v := range enumSets[set] {
		if v == value {
			return true
		}
	}
	return false
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func enumValidation(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return IsEnumValue(fl.Param(), str)
}

func birthDateValidation(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := ParseBirthDate(str)
	return err == nil
}

func phoneValidation(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && IsPhoneNumber(str)
}

func usernameValidation(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && usernameRegex.MatchString(str)
}

func passwordValidation(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && len(ValidatePassword(str)) == 0
}

func decimalPositiveValidation(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(str))
	return err == nil && d.IsPositive()
}

// socioDemographicStructValidation enforces the detail fields that depend on other answers
func socioDemographicStructValidation(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(models.SocioDemographicRequest)
	if !ok {
		return
	}
	if req.SelfIdentification == models.DefaultSelfIdentification && strings.TrimSpace(req.OtherIdentification) == "" {
		sl.ReportError(req.OtherIdentification, "otherIdentification", "OtherIdentification", requiredWhenTag, "")
	}
	if req.HasDisability != nil && *req.HasDisability && strings.TrimSpace(req.DisabilityDetail) == "" {
		sl.ReportError(req.DisabilityDetail, "disabilityDetail", "DisabilityDetail", requiredWhenTag, "")
	}
}

// familyCompositionStructValidation requires members when the household works the farm
func familyCompositionStructValidation(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(models.FamilyCompositionRequest)
	if !ok {
		return
	}
	if req.NeedsMembers() && len(req.FamilyMembers) == 0 {
		sl.ReportError(req.FamilyMembers, "familyMembers", "FamilyMembers", requiredWhenTag, "")
	}
}

// ParseBirthDate parses a YYYY-MM-DD date and rejects future dates
func ParseBirthDate(value string) (time.Time, error) {
	t, err := time.Parse(models.BirthDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth date: %w", err)
	}
	if t.After(time.Now()) {
		return time.Time{}, fmt.Errorf("birth date is in the future")
	}
	return t, nil
}

// IsValidEmail validates email format
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail normalizes an email address for consistent comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsPhoneNumber checks if a string looks like an international phone number
func IsPhoneNumber(phone string) bool {
	return phoneRegex.MatchString(phoneCleaner.ReplaceAllString(phone, ""))
}

// ValidatePassword validates password strength
func ValidatePassword(password string) []string {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "La contraseña debe tener al menos 8 caracteres")
	}
	if len(password) > 128 {
		errs = append(errs, "La contraseña debe tener como máximo 128 caracteres")
	}
	if !upperRegex.MatchString(password) {
		errs = append(errs, "La contraseña debe contener al menos una letra mayúscula")
	}
	if !lowerRegex.MatchString(password) {
		errs = append(errs, "La contraseña debe contener al menos una letra minúscula")
	}
	if !digitRegex.MatchString(password) {
		errs = append(errs, "La contraseña debe contener al menos un número")
	}

	return errs
}
