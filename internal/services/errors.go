package services

import "errors"

// Domain errors returned by the services and mapped to HTTP statuses by the handlers
var (
	ErrUserNotFound            = errors.New("usuario no encontrado")
	ErrUsernameTaken           = errors.New("el nombre de usuario ya está registrado")
	ErrEmailTaken              = errors.New("el correo electrónico ya está registrado")
	ErrPhoneTaken              = errors.New("el número de teléfono ya está asociado a otro usuario")
	ErrAccountDisabled         = errors.New("la cuenta está desactivada")
	ErrEmailNotVerified        = errors.New("el correo electrónico no ha sido verificado")
	ErrPhoneNotVerified        = errors.New("el número de teléfono no ha sido verificado")
	ErrEmailAlreadyVerified    = errors.New("el correo electrónico ya fue verificado")
	ErrPhoneAlreadyVerified    = errors.New("el número de teléfono ya fue verificado")
	ErrPhoneMismatch           = errors.New("el número de teléfono no coincide con el registrado")
	ErrPhoneNotRegistered      = errors.New("no hay un número de teléfono registrado")
	ErrInvalidCode             = errors.New("código de verificación incorrecto")
	ErrCodeExpired             = errors.New("el código de verificación ha expirado")
	ErrTooManyAttempts         = errors.New("demasiados intentos, solicita un nuevo código")
	ErrPhoneDeliveryFailed     = errors.New("no se pudo enviar el código al teléfono, intenta más tarde")
	ErrInvalidCredentials      = errors.New("contraseña incorrecta")
	ErrInvalidRandomPassword   = errors.New("la contraseña aleatoria es incorrecta o ha expirado")
	ErrForbidden               = errors.New("no tiene permiso para realizar esta acción")
	ErrInvalidToken            = errors.New("token inválido")
	ErrProfileNotFound         = errors.New("perfil no encontrado")
	ErrDuplicateIdentification = errors.New("el número de identificación ya está registrado")
	ErrDuplicateName           = errors.New("el nombre ya está registrado")
	ErrSocioNotFound           = errors.New("información sociodemográfica no encontrada")
	ErrSectionExists           = errors.New("la sección ya fue registrada")
	ErrProductiveInfoMissing   = errors.New("primero debe registrar la información productiva")
	ErrZoneNotFound            = errors.New("zona no encontrada")
	ErrZoneExists              = errors.New("la zona ya existe en este departamento")
	ErrNotCampiamigo           = errors.New("el perfil no es campiamigo")
	ErrIndicatorNotFound       = errors.New("indicador no encontrado")
	ErrProductNotFound         = errors.New("producto no encontrado")
	ErrProductExists           = errors.New("ya existe un producto con ese nombre para este usuario")
	ErrReviewExists            = errors.New("ya has dejado una reseña para este producto")
	ErrTipoNotFound            = errors.New("tipo de denuncia no encontrado")
	ErrTipoExists              = errors.New("el tipo de denuncia ya existe")
	ErrSubtipoNotFound         = errors.New("subtipo de denuncia no encontrado")
	ErrSubtipoExists           = errors.New("el subtipo de denuncia ya existe para este tipo")
	ErrSubtipoMismatch         = errors.New("el subtipo no pertenece al tipo de denuncia")
	ErrDenunciaNotFound        = errors.New("denuncia no encontrada")
	ErrInvalidFile             = errors.New("archivo no permitido")
	ErrFileTooLarge            = errors.New("el archivo supera el tamaño máximo permitido")
	ErrTooManyFiles            = errors.New("se excedió el número máximo de archivos permitidos")
	ErrNoDenuncias             = errors.New("no hay denuncias registradas")
)

// SectionExistsError carries the section-specific message of a repeated campesino section
type SectionExistsError struct {
	Message string
}

func (e *SectionExistsError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrSectionExists) match
func (e *SectionExistsError) Is(target error) bool { return target == ErrSectionExists }

// AccountLockedError is returned while failed logins keep an account locked
type AccountLockedError struct {
	Minutes int
}

func (e *AccountLockedError) Error() string {
	return "cuenta bloqueada temporalmente"
}
