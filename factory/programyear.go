/*
Package factory provides YAML to Go program-year configuration conversion.

PURPOSE:
  Converts program-year documents into engine.ProgramYearConfig values. Every
  limit, threshold, cap and allow-set the award rules read is configuration
  data: ministry staff publish a new document per program year and the
  engine picks it up without code changes.

WHY YAML?
  - Non-developers can review and modify program-year constants
  - Comments document where a number came from
  - Version control for each program year
  - JSON documents parse too (JSON is valid YAML)

DOCUMENT SCHEMA (abridged, see programyears/2024-2025.yaml):
  programYear:   {name: "2024-2025", start: "2024-08-01", end: "2025-07-31"}
  dependants:    {minorMaxAge: 17, youngAdultMaxAge: 22, childcareMaxAge: 11}
  costs:         {tuitionCap: 20000, weeklyLivingAllowance: {1: 420, 2: 680}, ...}
  transportation:{weeklyAllowance: 30, maxAdditionalAllowance: 1600, ...}
  contributions: {fullTime: {...}, partTime: {...}}
  awards:
    partTime:
      BCAG:
        institutions: [bcPublic]
        incomeThresholds: {1: 70000}
        federal: {amount: 1000, taper: {incomeCap: 45000, slope: 0.05, floor: 100}}

KEY FEATURES:
  - Validates enum values (intensities, award codes, credentials, lengths)
  - Validates every registered rule's required values (engine.ConfigError)
  - Embeds the default program years so the server starts with no files

USAGE:
  f := factory.NewProgramYearFactory()
  cfg, err := f.Parse(yamlBytes)

  registry, err := f.LoadDefaults()
  assessor := engine.NewAssessor(registry)

SEE ALSO:
  - engine/config.go: ProgramYearConfig definition and validation
  - fulltime/, parttime/: Rule catalogues whose requirements are validated
*/
package factory

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/studentaid/assessment-engine/engine"
	// Rule catalogues must be registered before configurations are validated.
	_ "github.com/studentaid/assessment-engine/fulltime"
	_ "github.com/studentaid/assessment-engine/parttime"
)

//go:embed programyears/*.yaml
var defaultProgramYears embed.FS

// =============================================================================
// DOCUMENT SCHEMA TYPES
// =============================================================================

// ProgramYearDoc is the YAML representation of a program year.
type ProgramYearDoc struct {
	ProgramYear    PeriodDoc                      `yaml:"programYear"`
	Dependants     DependantsDoc                  `yaml:"dependants"`
	Costs          CostsDoc                       `yaml:"costs"`
	Transportation TransportationDoc              `yaml:"transportation"`
	Contributions  map[string]ContributionsDoc    `yaml:"contributions"`
	Awards         map[string]map[string]AwardDoc `yaml:"awards"`
}

type PeriodDoc struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`
}

type DependantsDoc struct {
	MinorMaxAge      int `yaml:"minorMaxAge"`
	YoungAdultMaxAge int `yaml:"youngAdultMaxAge"`
	ChildcareMaxAge  int `yaml:"childcareMaxAge"`
}

type CostsDoc struct {
	TuitionCap              float64         `yaml:"tuitionCap"`
	AviationTuitionCap      float64         `yaml:"aviationTuitionCap"`
	BooksCap                float64         `yaml:"booksCap"`
	WeeklyLivingAllowance   map[int]float64 `yaml:"weeklyLivingAllowance"`
	ChildcareWeeklyPerChild float64         `yaml:"childcareWeeklyPerChild"`
	SecondResidenceWeekly   float64         `yaml:"secondResidenceWeekly"`
	TravelAllowance         float64         `yaml:"travelAllowance"`
	ExchangeAllowance       float64         `yaml:"exchangeAllowance"`
}

type TransportationDoc struct {
	WeeklyAllowance           float64 `yaml:"weeklyAllowance"`
	MaxAdditionalAllowance    float64 `yaml:"maxAdditionalAllowance"`
	PlacementDeduction        float64 `yaml:"placementDeduction"`
	OnsiteDistanceThresholdKm int     `yaml:"onsiteDistanceThresholdKm"`
	DistanceReductionFactor   float64 `yaml:"distanceReductionFactor"`
}

type ContributionsDoc struct {
	StudentExemption float64 `yaml:"studentExemption"`
	PartnerExemption float64 `yaml:"partnerExemption"`
	StudentRate      float64 `yaml:"studentRate"`
	PartnerRate      float64 `yaml:"partnerRate"`
}

type AwardDoc struct {
	IncomeThresholds     map[int]float64 `yaml:"incomeThresholds,omitempty"`
	Credentials          []string        `yaml:"credentials,omitempty"`
	ProgramLengths       []string        `yaml:"programLengths,omitempty"`
	Institutions         []string        `yaml:"institutions,omitempty"`
	CourseLoadThreshold  int             `yaml:"courseLoadThreshold,omitempty"`
	MinimumCourseLoad    int             `yaml:"minimumCourseLoad,omitempty"`
	YearsSinceHighSchool int             `yaml:"yearsSinceHighSchool,omitempty"`
	Federal              *ComponentDoc   `yaml:"federal,omitempty"`
	Provincial           *ComponentDoc   `yaml:"provincial,omitempty"`
}

type ComponentDoc struct {
	Amount           float64   `yaml:"amount,omitempty"`
	ReducedAmount    float64   `yaml:"reducedAmount,omitempty"`
	PerDependant     float64   `yaml:"perDependant,omitempty"`
	Weekly           float64   `yaml:"weekly,omitempty"`
	NeedShare        float64   `yaml:"needShare,omitempty"`
	Taper            *TaperDoc `yaml:"taper,omitempty"`
	ProgramYearLimit *float64  `yaml:"programYearLimit,omitempty"`
	MinDisbursable   float64   `yaml:"minDisbursable,omitempty"`
	Cumulative       string    `yaml:"cumulative,omitempty"`
}

type TaperDoc struct {
	IncomeCap float64 `yaml:"incomeCap"`
	Slope     float64 `yaml:"slope"`
	Floor     float64 `yaml:"floor"`
}

// =============================================================================
// PROGRAM YEAR FACTORY
// =============================================================================

// ProgramYearFactory converts program-year documents to engine configurations.
type ProgramYearFactory struct{}

// NewProgramYearFactory creates a new program-year factory.
func NewProgramYearFactory() *ProgramYearFactory {
	return &ProgramYearFactory{}
}

// Parse parses and validates a YAML (or JSON) document.
func (f *ProgramYearFactory) Parse(data []byte) (*engine.ProgramYearConfig, error) {
	var doc ProgramYearDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse program year document: %w", err)
	}
	return f.FromDoc(doc)
}

// FromDoc converts a ProgramYearDoc to a validated engine.ProgramYearConfig.
func (f *ProgramYearFactory) FromDoc(doc ProgramYearDoc) (*engine.ProgramYearConfig, error) {
	year, err := parsePeriod(doc.ProgramYear)
	if err != nil {
		return nil, err
	}
	name := year.Name

	cfg := &engine.ProgramYearConfig{
		ProgramYear: year,
		Dependants: engine.DependantRules{
			MinorMaxAge:      doc.Dependants.MinorMaxAge,
			YoungAdultMaxAge: doc.Dependants.YoungAdultMaxAge,
			ChildcareMaxAge:  doc.Dependants.ChildcareMaxAge,
		},
		Costs: engine.CostRules{
			TuitionCap:              engine.NewMoney(doc.Costs.TuitionCap),
			AviationTuitionCap:      engine.NewMoney(doc.Costs.AviationTuitionCap),
			BooksCap:                engine.NewMoney(doc.Costs.BooksCap),
			WeeklyLivingAllowance:   parseTable(doc.Costs.WeeklyLivingAllowance),
			ChildcareWeeklyPerChild: engine.NewMoney(doc.Costs.ChildcareWeeklyPerChild),
			SecondResidenceWeekly:   engine.NewMoney(doc.Costs.SecondResidenceWeekly),
			TravelAllowance:         engine.NewMoney(doc.Costs.TravelAllowance),
			ExchangeAllowance:       engine.NewMoney(doc.Costs.ExchangeAllowance),
		},
		Transportation: engine.TransportationRules{
			WeeklyAllowance:           engine.NewMoney(doc.Transportation.WeeklyAllowance),
			MaxAdditionalAllowance:    engine.NewMoney(doc.Transportation.MaxAdditionalAllowance),
			PlacementDeduction:        engine.NewMoney(doc.Transportation.PlacementDeduction),
			OnsiteDistanceThresholdKm: doc.Transportation.OnsiteDistanceThresholdKm,
			DistanceReductionFactor:   decimal.NewFromFloat(doc.Transportation.DistanceReductionFactor),
		},
		Contributions: make(map[engine.OfferingIntensity]engine.ContributionRules),
		Awards:        make(map[engine.OfferingIntensity]map[engine.AwardCode]engine.AwardConfig),
	}

	for key, c := range doc.Contributions {
		intensity, err := engine.ParseIntensity(key)
		if err != nil {
			return nil, &engine.ConfigError{ProgramYear: name, Field: "contributions." + key, Reason: "is not an offering intensity"}
		}
		cfg.Contributions[intensity] = engine.ContributionRules{
			StudentExemption: engine.NewMoney(c.StudentExemption),
			PartnerExemption: engine.NewMoney(c.PartnerExemption),
			StudentRate:      decimal.NewFromFloat(c.StudentRate),
			PartnerRate:      decimal.NewFromFloat(c.PartnerRate),
		}
	}

	for key, awards := range doc.Awards {
		intensity, err := engine.ParseIntensity(key)
		if err != nil {
			return nil, &engine.ConfigError{ProgramYear: name, Field: "awards." + key, Reason: "is not an offering intensity"}
		}
		cfg.Awards[intensity] = make(map[engine.AwardCode]engine.AwardConfig, len(awards))
		for rawCode, ad := range awards {
			code := engine.AwardCode(strings.ToUpper(rawCode))
			if !code.Valid() {
				return nil, &engine.ConfigError{ProgramYear: name, Intensity: intensity, Field: "awards." + rawCode, Reason: "is not an award code"}
			}
			award, err := parseAward(ad)
			if err != nil {
				err.ProgramYear, err.Intensity, err.Award = name, intensity, code
				return nil, err
			}
			cfg.Awards[intensity][code] = award
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// LOADING
// =============================================================================

// LoadDefaults loads the program years embedded in the binary.
func (f *ProgramYearFactory) LoadDefaults() (*Registry, error) {
	entries, err := defaultProgramYears.ReadDir("programyears")
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, e := range entries {
		data, err := defaultProgramYears.ReadFile("programyears/" + e.Name())
		if err != nil {
			return nil, err
		}
		cfg, err := f.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		reg.Add(cfg)
	}
	return reg, nil
}

// LoadDir loads every *.yaml, *.yml and *.json document in dir into reg,
// replacing program years of the same name. Nothing is added unless every
// document parses and validates.
func (f *ProgramYearFactory) LoadDir(reg *Registry, dir string) error {
	files, err := programYearFiles(dir)
	if err != nil {
		return err
	}
	configs := make([]*engine.ProgramYearConfig, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		cfg, err := f.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		configs = append(configs, cfg)
	}
	for _, cfg := range configs {
		reg.Add(cfg)
	}
	return nil
}

// Load builds a registry from the embedded defaults overlaid with the
// documents in dir. An empty dir loads the defaults only.
func (f *ProgramYearFactory) Load(dir string) (*Registry, error) {
	reg, err := f.LoadDefaults()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return reg, nil
	}
	if err := f.LoadDir(reg, dir); err != nil {
		return nil, err
	}
	return reg, nil
}

func programYearFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read program year dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// =============================================================================
// REGISTRY - Loaded program years, implements engine.ConfigProvider
// =============================================================================

type Registry struct {
	mu      sync.RWMutex
	configs map[string]*engine.ProgramYearConfig
}

func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]*engine.ProgramYearConfig)}
}

func (r *Registry) Add(cfg *engine.ProgramYearConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.Name()] = cfg
}

// Replace swaps in the program years of other, dropping any not present there.
func (r *Registry) Replace(other *Registry) {
	other.mu.RLock()
	configs := make(map[string]*engine.ProgramYearConfig, len(other.configs))
	for name, cfg := range other.configs {
		configs[name] = cfg
	}
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = configs
}

func (r *Registry) ProgramYear(name string) (*engine.ProgramYearConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrProgramYearNotConfigured, name)
	}
	return cfg, nil
}

// Names returns the loaded program years in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.configs))
	for n := range r.configs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var _ engine.ConfigProvider = (*Registry)(nil)

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func parsePeriod(p PeriodDoc) (engine.ProgramYear, error) {
	year, err := engine.ParseProgramYear(p.Name)
	if err != nil {
		return engine.ProgramYear{}, &engine.ConfigError{ProgramYear: p.Name, Field: "programYear.name", Reason: err.Error()}
	}
	if p.Start != "" {
		if year.Start, err = engine.ParseDate(p.Start); err != nil {
			return engine.ProgramYear{}, &engine.ConfigError{ProgramYear: p.Name, Field: "programYear.start", Reason: err.Error()}
		}
	}
	if p.End != "" {
		if year.End, err = engine.ParseDate(p.End); err != nil {
			return engine.ProgramYear{}, &engine.ConfigError{ProgramYear: p.Name, Field: "programYear.end", Reason: err.Error()}
		}
	}
	return year, nil
}

func parseTable(t map[int]float64) engine.FamilySizeTable {
	if len(t) == 0 {
		return nil
	}
	table := make(engine.FamilySizeTable, len(t))
	for size, v := range t {
		table[size] = engine.NewMoney(v)
	}
	return table
}

func parseAward(ad AwardDoc) (engine.AwardConfig, *engine.ConfigError) {
	award := engine.AwardConfig{
		IncomeThresholds:     parseTable(ad.IncomeThresholds),
		CourseLoadThreshold:  ad.CourseLoadThreshold,
		MinimumCourseLoad:    ad.MinimumCourseLoad,
		YearsSinceHighSchool: ad.YearsSinceHighSchool,
	}
	for _, c := range ad.Credentials {
		if !knownCredentials[engine.CredentialType(c)] {
			return award, &engine.ConfigError{Field: "credentials", Reason: fmt.Sprintf("unknown credential type %q", c)}
		}
		award.Credentials = append(award.Credentials, engine.CredentialType(c))
	}
	for _, l := range ad.ProgramLengths {
		if !knownLengths[engine.ProgramLength(l)] {
			return award, &engine.ConfigError{Field: "programLengths", Reason: fmt.Sprintf("unknown program length %q", l)}
		}
		award.ProgramLengths = append(award.ProgramLengths, engine.ProgramLength(l))
	}
	for _, i := range ad.Institutions {
		if !knownInstitutions[engine.InstitutionType(i)] {
			return award, &engine.ConfigError{Field: "institutions", Reason: fmt.Sprintf("unknown institution type %q", i)}
		}
		award.Institutions = append(award.Institutions, engine.InstitutionType(i))
	}

	var err *engine.ConfigError
	if award.Federal, err = parseComponent("federal", ad.Federal); err != nil {
		return award, err
	}
	if award.Provincial, err = parseComponent("provincial", ad.Provincial); err != nil {
		return award, err
	}
	return award, nil
}

func parseComponent(field string, cd *ComponentDoc) (engine.ComponentConfig, *engine.ConfigError) {
	if cd == nil {
		return engine.ComponentConfig{}, nil
	}
	c := engine.ComponentConfig{
		Amount:         engine.NewMoney(cd.Amount),
		ReducedAmount:  engine.NewMoney(cd.ReducedAmount),
		PerDependant:   engine.NewMoney(cd.PerDependant),
		Weekly:         engine.NewMoney(cd.Weekly),
		NeedShare:      decimal.NewFromFloat(cd.NeedShare),
		MinDisbursable: engine.NewMoney(cd.MinDisbursable),
	}
	if cd.Taper != nil {
		if cd.Taper.Slope < 0 {
			return c, &engine.ConfigError{Field: field + ".taper.slope", Reason: "must not be negative"}
		}
		c.Taper = &engine.Taper{
			IncomeCap: engine.NewMoney(cd.Taper.IncomeCap),
			Slope:     decimal.NewFromFloat(cd.Taper.Slope),
			Floor:     engine.NewMoney(cd.Taper.Floor),
		}
	}
	if cd.ProgramYearLimit != nil {
		if *cd.ProgramYearLimit < 0 {
			return c, &engine.ConfigError{Field: field + ".programYearLimit", Reason: "must not be negative"}
		}
		limit := engine.NewMoney(*cd.ProgramYearLimit)
		c.ProgramYearLimit = &limit
	}
	switch cd.Cumulative {
	case "", string(engine.ScopeIntensity):
		c.Cumulative = engine.ScopeIntensity
	case string(engine.ScopeProgramYear):
		c.Cumulative = engine.ScopeProgramYear
	default:
		return c, &engine.ConfigError{Field: field + ".cumulative", Reason: fmt.Sprintf("unknown scope %q", cd.Cumulative)}
	}
	return c, nil
}

var knownCredentials = map[engine.CredentialType]bool{
	engine.CredentialUndergraduateCertificate: true,
	engine.CredentialUndergraduateCitation:    true,
	engine.CredentialUndergraduateDiploma:     true,
	engine.CredentialUndergraduateDegree:      true,
	engine.CredentialGraduateCertificate:      true,
	engine.CredentialGraduateDiploma:          true,
	engine.CredentialGraduateDegree:           true,
	engine.CredentialMasters:                  true,
	engine.CredentialDoctorate:                true,
	engine.CredentialQualifyingStudies:        true,
	engine.CredentialEntryLevelCertificate:    true,
}

var knownLengths = map[engine.ProgramLength]bool{
	engine.LengthUnder12Weeks: true,
	engine.Length12To52Weeks:  true,
	engine.Length1To2Years:    true,
	engine.Length2To3Years:    true,
	engine.Length3To4Years:    true,
	engine.Length4YearsPlus:   true,
}

var knownInstitutions = map[engine.InstitutionType]bool{
	engine.InstitutionBCPublic:  true,
	engine.InstitutionBCPrivate: true,
	engine.InstitutionOther:     true,
}
