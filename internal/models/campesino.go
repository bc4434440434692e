package models

import (
	"time"
)

// Accepted values for the campesino characterization sections
var (
	SelfIdentifications   = []string{"Campesino(a)", "Trabajador(a) rural", "Habitante rural", "Otro"}
	EthnicGroups          = []string{"Indígena", "Afrocolombiano", "Raizales", "ROM o gitano", "Ninguno"}
	EducationLevels       = []string{"Ninguna", "Primaria", "Secundaria", "Técnico o Tecnológico", "Profesional", "Posgrado"}
	PredominantLabors     = []string{"Familiar", "Contratada", "Mixta"}
	MemberGenders         = []string{"Mujer", "Hombre", "Otro", "Prefiero no declarar"}
	LandTypes             = []string{"Propio", "Arriendo", "Sana Posesión", "Ocupación", "Anticresis", "Usufructo"}
	HousingLocations      = []string{"Dentro del predio", "Predio colindante", "Predio no colindante (misma vereda)", "Predio no colindante (otra vereda)", "Predio no colindante (otro municipio)", "Otra"}
	RouteTypes            = []string{"Pavimentada", "En afirmado", "Herradura", "Adoquín", "En afirmado con placa huella"}
	WaterSources          = []string{"Distrito de riego", "Nacimiento", "Quebrada", "Río", "Reservorio", "No cuenta", "Otro"}
	EconomicActivities    = []string{"Agrícola", "Pecuaria", "Agropecuaria", "Silvopastoril", "Agrosilvopastoril"}
	Percentages           = []string{"0-25%", "25-50%", "50-75%", "Más de 75%"}
	ConsumptionFrequences = []string{"Diariamente", "Semanalmente", "Mensualmente", "Rara vez"}
	ConsumptionChanges    = []string{"Ha aumentado", "Ha disminuido", "Se ha mantenido"}
	PreparationMethods    = []string{"Maquinaria", "Arado de tracción animal", "Arado manual"}
	PestControlMethods    = []string{"Síntesis química (calendario)", "Síntesis química y biológicos", "Plaguicidas biológicos", "Productos orgánicos"}
)

// Defaults written to socio_demographic at registration
const (
	DefaultSelfIdentification = "Otro"
	DefaultEthnicGroup        = "Ninguno"
	DefaultEducationLevel     = "Ninguna"
)

// RequiredMainProducts is the exact number of main products a campesino declares
const RequiredMainProducts = 5

// SocioDemographic represents a socio_demographic row
type SocioDemographic struct {
	ID                  int64     `json:"id" db:"id"`
	UserID              int64     `json:"userId" db:"user_id"`
	ResidenceYears      int       `json:"residenceYears" db:"residence_years"`
	ResidenceMonths     int       `json:"residenceMonths" db:"residence_months"`
	SelfIdentification  string    `json:"selfIdentification" db:"self_identification"`
	OtherIdentification string    `json:"otherIdentification" db:"other_identification"`
	EthnicGroup         string    `json:"ethnicGroup" db:"ethnic_group"`
	EthnicGroupDetail   string    `json:"ethnicGroupDetail" db:"ethnic_group_detail"`
	HasDisability       bool      `json:"hasDisability" db:"has_disability"`
	DisabilityDetail    string    `json:"disabilityDetail" db:"disability_detail"`
	ConflictVictim      bool      `json:"conflictVictim" db:"conflict_victim"`
	EducationLevel      string    `json:"educationLevel" db:"education_level"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}

// IsRegistrationDefault reports whether the row still holds the values written at sign up
func (s *SocioDemographic) IsRegistrationDefault() bool {
	return s.ResidenceYears == 0 && s.ResidenceMonths == 0 &&
		s.SelfIdentification == DefaultSelfIdentification && s.OtherIdentification == "" &&
		s.EthnicGroup == DefaultEthnicGroup && !s.HasDisability && !s.ConflictVictim &&
		s.EducationLevel == DefaultEducationLevel
}

// SocioDemographicRequest captures the socio-demographic section
type SocioDemographicRequest struct {
	ResidenceYears      *int   `json:"residenceYears" validate:"required,gte=0,lte=120"`
	ResidenceMonths     *int   `json:"residenceMonths" validate:"required,gte=0,lte=11"`
	SelfIdentification  string `json:"selfIdentification" validate:"required,enum=selfIdentification"`
	OtherIdentification string `json:"otherIdentification" validate:"max=100"`
	EthnicGroup         string `json:"ethnicGroup" validate:"required,enum=ethnicGroup"`
	EthnicGroupDetail   string `json:"ethnicGroupDetail" validate:"max=100"`
	HasDisability       *bool  `json:"hasDisability" validate:"required"`
	DisabilityDetail    string `json:"disabilityDetail" validate:"max=255"`
	ConflictVictim      *bool  `json:"conflictVictim" validate:"required"`
	EducationLevel      string `json:"educationLevel" validate:"required,enum=educationLevel"`
}

// PersonalDataRequest captures the personal section of a campesino
type PersonalDataRequest struct {
	FirstName            string `json:"firstName" validate:"required,notblank,max=100"`
	LastName             string `json:"lastName" validate:"required,notblank,max=100"`
	IdentificationType   string `json:"identificationType" validate:"required,enum=identificationType"`
	IdentificationNumber string `json:"identificationNumber" validate:"required,notblank,max=30"`
	BirthDate            string `json:"birthDate" validate:"required,birthdate"`
	Gender               string `json:"gender" validate:"required,enum=gender"`
	Biography            string `json:"biography" validate:"max=1000"`
	Direccion            string `json:"direccion" validate:"max=255"`
}

// FamilyComposition represents a family_composition row
type FamilyComposition struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"userId" db:"user_id"`
	PersonsInHome    int       `json:"personsInHome" db:"persons_in_home"`
	DependentPersons int       `json:"dependentPersons" db:"dependent_persons"`
	WorkingPersons   int       `json:"workingPersons" db:"working_persons"`
	PredominantLabor string    `json:"predominantLabor" db:"predominant_labor"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`

	Members []FamilyMember `json:"familyMembers" db:"-"`
}

// FamilyMember represents a family_member row
type FamilyMember struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"userId" db:"user_id"`
	Relationship     string    `json:"relationship" db:"relationship"`
	Gender           string    `json:"gender" db:"gender"`
	Age              int       `json:"age" db:"age"`
	EducationLevel   string    `json:"educationLevel" db:"education_level"`
	EthnicGroup      string    `json:"ethnicGroup" db:"ethnic_group"`
	HasDisability    bool      `json:"hasDisability" db:"has_disability"`
	DisabilityDetail string    `json:"disabilityDetail" db:"disability_detail"`
	RoleInProduction string    `json:"roleInProduction" db:"role_in_production"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// FamilyCompositionRequest captures household composition and its members
type FamilyCompositionRequest struct {
	PersonsInHome    *int                  `json:"personsInHome" validate:"required,gte=1,lte=50"`
	DependentPersons *int                  `json:"dependentPersons" validate:"required,gte=0,lte=50"`
	WorkingPersons   *int                  `json:"workingPersons" validate:"required,gte=0,lte=50"`
	PredominantLabor string                `json:"predominantLabor" validate:"required,enum=predominantLabor"`
	FamilyMembers    []FamilyMemberRequest `json:"familyMembers" validate:"dive"`
}

// NeedsMembers reports whether the labor type requires listing family members
func (r *FamilyCompositionRequest) NeedsMembers() bool {
	return r.PredominantLabor == "Familiar" || r.PredominantLabor == "Mixta"
}

// FamilyMemberRequest is one member inside FamilyCompositionRequest
type FamilyMemberRequest struct {
	Relationship     string `json:"relationship" validate:"required,notblank,max=60"`
	Gender           string `json:"gender" validate:"required,enum=memberGender"`
	Age              *int   `json:"age" validate:"required,gte=0,lte=120"`
	EducationLevel   string `json:"educationLevel" validate:"required,enum=educationLevel"`
	EthnicGroup      string `json:"ethnicGroup" validate:"omitempty,enum=ethnicGroup"`
	HasDisability    bool   `json:"hasDisability"`
	DisabilityDetail string `json:"disabilityDetail" validate:"max=255"`
	RoleInProduction string `json:"roleInProduction" validate:"max=100"`
}

// FarmProfile represents a farm_profile row
type FarmProfile struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"userId" db:"user_id"`
	Address         string    `json:"address" db:"address"`
	Vereda          string    `json:"vereda" db:"vereda"`
	Municipality    string    `json:"municipality" db:"municipality"`
	Department      string    `json:"department" db:"department"`
	GPSCoordinates  string    `json:"gpsCoordinates" db:"gps_coordinates"`
	LandType        string    `json:"landType" db:"land_type"`
	HousingLocation string    `json:"housingLocation" db:"housing_location"`
	TotalArea       float64   `json:"totalArea" db:"total_area"`
	AreaPecuaria    *float64  `json:"areaPecuaria" db:"area_pecuaria"`
	AreaAgricola    *float64  `json:"areaAgricola" db:"area_agricola"`
	AreaForestal    *float64  `json:"areaForestal" db:"area_forestal"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// FarmProfileRequest captures the farm section
type FarmProfileRequest struct {
	Address         string   `json:"address" validate:"required,notblank,max=255"`
	Vereda          string   `json:"vereda" validate:"required,notblank,max=100"`
	Municipality    string   `json:"municipality" validate:"required,notblank,max=100"`
	Department      string   `json:"department" validate:"required,notblank,max=100"`
	GPSCoordinates  string   `json:"gpsCoordinates" validate:"max=100"`
	LandType        string   `json:"landType" validate:"required,enum=landType"`
	HousingLocation string   `json:"housingLocation" validate:"required,enum=housingLocation"`
	TotalArea       *float64 `json:"totalArea" validate:"required,gt=0"`
	AreaPecuaria    *float64 `json:"areaPecuaria" validate:"omitempty,gte=0"`
	AreaAgricola    *float64 `json:"areaAgricola" validate:"omitempty,gte=0"`
	AreaForestal    *float64 `json:"areaForestal" validate:"omitempty,gte=0"`
}

// Infrastructure represents an infrastructure row
type Infrastructure struct {
	ID                     int64     `json:"id" db:"id"`
	UserID                 int64     `json:"userId" db:"user_id"`
	HasElectricity         bool      `json:"hasElectricity" db:"has_electricity"`
	HasAcueduct            bool      `json:"hasAcueduct" db:"has_acueduct"`
	HasGas                 bool      `json:"hasGas" db:"has_gas"`
	HasInternet            bool      `json:"hasInternet" db:"has_internet"`
	HasSewer               bool      `json:"hasSewer" db:"has_sewer"`
	HasPublicLighting      bool      `json:"hasPublicLighting" db:"has_public_lighting"`
	OtherService           string    `json:"otherService" db:"other_service"`
	MainRoute              string    `json:"mainRoute" db:"main_route"`
	SecondaryRoute         string    `json:"secondaryRoute" db:"secondary_route"`
	TertiaryRoute          string    `json:"tertiaryRoute" db:"tertiary_route"`
	WaterSource            string    `json:"waterSource" db:"water_source"`
	HasIrrigationSystem    bool      `json:"hasIrrigationSystem" db:"has_irrigation_system"`
	IrrigationSystemDetail string    `json:"irrigationSystemDetail" db:"irrigation_system_detail"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time `json:"updatedAt" db:"updated_at"`
}

// InfrastructureRequest captures services and access routes of the farm
type InfrastructureRequest struct {
	HasElectricity         bool   `json:"hasElectricity"`
	HasAcueduct            bool   `json:"hasAcueduct"`
	HasGas                 bool   `json:"hasGas"`
	HasInternet            bool   `json:"hasInternet"`
	HasSewer               bool   `json:"hasSewer"`
	HasPublicLighting      bool   `json:"hasPublicLighting"`
	OtherService           string `json:"otherService" validate:"max=255"`
	MainRoute              string `json:"mainRoute" validate:"required,enum=route"`
	SecondaryRoute         string `json:"secondaryRoute" validate:"required,enum=route"`
	TertiaryRoute          string `json:"tertiaryRoute" validate:"required,enum=route"`
	WaterSource            string `json:"waterSource" validate:"required,enum=waterSource"`
	HasIrrigationSystem    *bool  `json:"hasIrrigationSystem" validate:"required"`
	IrrigationSystemDetail string `json:"irrigationSystemDetail" validate:"max=255"`
}

// ProductiveInfo represents a productive_info row
type ProductiveInfo struct {
	ID                    int64     `json:"id" db:"id"`
	UserID                int64     `json:"userId" db:"user_id"`
	EconomicActivity      string    `json:"economicActivity" db:"economic_activity"`
	AgroIncomePercentage  string    `json:"agroIncomePercentage" db:"agro_income_percentage"`
	AutoconsumoPercentage string    `json:"autoconsumoPercentage" db:"autoconsumo_percentage"`
	ConsumptionFrequency  string    `json:"consumptionFrequency" db:"consumption_frequency"`
	ConsumptionChange     string    `json:"consumptionChange" db:"consumption_change"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time `json:"updatedAt" db:"updated_at"`

	MainProducts []MainProduct `json:"mainProducts" db:"-"`
}

// ProductiveInfoRequest captures the productive section
type ProductiveInfoRequest struct {
	EconomicActivity      string `json:"economicActivity" validate:"required,enum=economicActivity"`
	AgroIncomePercentage  string `json:"agroIncomePercentage" validate:"required,enum=percentage"`
	AutoconsumoPercentage string `json:"autoconsumoPercentage" validate:"required,enum=percentage"`
	ConsumptionFrequency  string `json:"consumptionFrequency" validate:"required,enum=consumptionFrequency"`
	ConsumptionChange     string `json:"consumptionChange" validate:"required,enum=consumptionChange"`
}

// MainProduct represents a main_product row
type MainProduct struct {
	ID                     int64     `json:"id" db:"id"`
	ProductiveInfoID       int64     `json:"productiveInfoId" db:"productive_info_id"`
	ProductName            string    `json:"productName" db:"product_name"`
	AverageMonthlyQuantity float64   `json:"averageMonthlyQuantity" db:"average_monthly_quantity"`
	Unit                   string    `json:"unit" db:"unit"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time `json:"updatedAt" db:"updated_at"`
}

// MainProductsRequest carries the main products of a farm
type MainProductsRequest struct {
	Products []MainProductRequest `json:"products" validate:"required,len=5,dive"`
}

// MainProductRequest is one entry of MainProductsRequest
type MainProductRequest struct {
	ProductName            string   `json:"productName" validate:"required,notblank,max=100"`
	AverageMonthlyQuantity *float64 `json:"averageMonthlyQuantity" validate:"required,gte=0"`
	Unit                   string   `json:"unit" validate:"required,notblank,max=30"`
}

// TechnologyPractice represents a technology_practice row
type TechnologyPractice struct {
	ID                                  int64     `json:"id" db:"id"`
	UserID                              int64     `json:"userId" db:"user_id"`
	PreparationMethod                   string    `json:"preparationMethod" db:"preparation_method"`
	HasManualFumigadora                 bool      `json:"hasManualFumigadora" db:"has_manual_fumigadora"`
	HasMotorFumigadora                  bool      `json:"hasMotorFumigadora" db:"has_motor_fumigadora"`
	HasMilkingEquipment                 bool      `json:"hasMilkingEquipment" db:"has_milking_equipment"`
	HasGuadana                          bool      `json:"hasGuadana" db:"has_guadana"`
	HasManualTools                      bool      `json:"hasManualTools" db:"has_manual_tools"`
	HasElectricPlant                    bool      `json:"hasElectricPlant" db:"has_electric_plant"`
	HasTractor                          bool      `json:"hasTractor" db:"has_tractor"`
	HasMotocultor                       bool      `json:"hasMotocultor" db:"has_motocultor"`
	HasPicadora                         bool      `json:"hasPicadora" db:"has_picadora"`
	HasColdTanks                        bool      `json:"hasColdTanks" db:"has_cold_tanks"`
	HasMotobomba                        bool      `json:"hasMotobomba" db:"has_motobomba"`
	OtherEquipment                      string    `json:"otherEquipment" db:"other_equipment"`
	PestControlMethod                   string    `json:"pestControlMethod" db:"pest_control_method"`
	ReceivedTrainingForBiopreparados    bool      `json:"receivedTrainingForBiopreparados" db:"received_training_for_biopreparados"`
	InterestedInTraining                bool      `json:"interestedInTraining" db:"interested_in_training"`
	BiopreparadosPestFrequency          string    `json:"biopreparadosPestFrequency" db:"biopreparados_pest_frequency"`
	BiopreparadosFertilizationFrequency string    `json:"biopreparadosFertilizationFrequency" db:"biopreparados_fertilization_frequency"`
	PerformsMultiplication              bool      `json:"performsMultiplication" db:"performs_multiplication"`
	MultiplicationDetail                string    `json:"multiplicationDetail" db:"multiplication_detail"`
	CreatedAt                           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt                           time.Time `json:"updatedAt" db:"updated_at"`
}

// TechnologyPracticeRequest captures equipment and agronomic practices
type TechnologyPracticeRequest struct {
	PreparationMethod                   string `json:"preparationMethod" validate:"required,enum=preparationMethod"`
	HasManualFumigadora                 bool   `json:"hasManualFumigadora"`
	HasMotorFumigadora                  bool   `json:"hasMotorFumigadora"`
	HasMilkingEquipment                 bool   `json:"hasMilkingEquipment"`
	HasGuadana                          bool   `json:"hasGuadana"`
	HasManualTools                      bool   `json:"hasManualTools"`
	HasElectricPlant                    bool   `json:"hasElectricPlant"`
	HasTractor                          bool   `json:"hasTractor"`
	HasMotocultor                       bool   `json:"hasMotocultor"`
	HasPicadora                         bool   `json:"hasPicadora"`
	HasColdTanks                        bool   `json:"hasColdTanks"`
	HasMotobomba                        bool   `json:"hasMotobomba"`
	OtherEquipment                      string `json:"otherEquipment" validate:"max=255"`
	PestControlMethod                   string `json:"pestControlMethod" validate:"required,enum=pestControlMethod"`
	ReceivedTrainingForBiopreparados    bool   `json:"receivedTrainingForBiopreparados"`
	InterestedInTraining                bool   `json:"interestedInTraining"`
	BiopreparadosPestFrequency          string `json:"biopreparadosPestFrequency" validate:"max=100"`
	BiopreparadosFertilizationFrequency string `json:"biopreparadosFertilizationFrequency" validate:"max=100"`
	PerformsMultiplication              bool   `json:"performsMultiplication"`
	MultiplicationDetail                string `json:"multiplicationDetail" validate:"max=255"`
}

// CampesinoRecord groups every registered section of one user
type CampesinoRecord struct {
	Profile            *Profile            `json:"profile"`
	SocioDemographic   *SocioDemographic   `json:"socioDemographic"`
	FamilyComposition  *FamilyComposition  `json:"familyComposition"`
	FarmProfile        *FarmProfile        `json:"farmProfile"`
	Infrastructure     *Infrastructure     `json:"infrastructure"`
	ProductiveInfo     *ProductiveInfo     `json:"productiveInfo"`
	TechnologyPractice *TechnologyPractice `json:"technologyPractice"`
}
