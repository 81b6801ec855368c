package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SuperbaseThreshold is the pKa above which a compound counts as a superbase.
const SuperbaseThreshold = 25.0

// SeedCompoundName is the well-known record the client offers to auto-insert
// when it is missing from the displayed list.
const SeedCompoundName = "P4-t-Bu"

// Attribute names for the per-attribute property rows.
const (
	AttrPKa         = "pKa"
	AttrEnergyEV    = "energy_eV"
	AttrGeometry    = "geometry"
	AttrIsSuperbase = "is_superbase"
)

// Properties is the loosely typed attribute map carried on a compound row.
// Pointer fields distinguish absent from zero; an absent value is never
// written as a property row.
type Properties struct {
	PKa         *float64 `json:"pKa,omitempty"`
	EnergyEV    *float64 `json:"energy_eV,omitempty"`
	Geometry    *string  `json:"geometry,omitempty"`
	IsSuperbase *bool    `json:"is_superbase,omitempty"`
}

// Rows expands the property map into one row per present attribute, keyed by
// (compound_id, attribute). Absent attributes are skipped, not emitted as
// nulls.
func (p Properties) Rows(compoundID uuid.UUID) []CompoundProperty {
	var rows []CompoundProperty
	if p.PKa != nil {
		rows = append(rows, CompoundProperty{CompoundID: compoundID, Attribute: AttrPKa, Value: *p.PKa})
	}
	if p.EnergyEV != nil {
		rows = append(rows, CompoundProperty{CompoundID: compoundID, Attribute: AttrEnergyEV, Value: *p.EnergyEV})
	}
	if p.Geometry != nil {
		rows = append(rows, CompoundProperty{CompoundID: compoundID, Attribute: AttrGeometry, Value: *p.Geometry})
	}
	if p.IsSuperbase != nil {
		rows = append(rows, CompoundProperty{CompoundID: compoundID, Attribute: AttrIsSuperbase, Value: *p.IsSuperbase})
	}
	return rows
}

// Compound is a named chemical entity. Name is the natural key: a compound
// with a given name has at most one row (upsert-on-name).
type Compound struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Formula        *string    `json:"formula"`
	Properties     Properties `json:"properties"`
	SynthesisNotes *string    `json:"synthesis_notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CompoundProperty mirrors one attribute of a compound's property map. The
// value is loosely typed: number, string, or boolean. Present attributes are
// upserted on every save; rows for attributes absent from a later save
// remain untouched.
type CompoundProperty struct {
	CompoundID uuid.UUID `json:"compound_id"`
	Attribute  string    `json:"attribute"`
	Value      any       `json:"value"`
}

// CompoundForm carries the raw form strings of a compound submission. Only
// the name is required; every other field is optional.
type CompoundForm struct {
	Name     string `json:"name"`
	Formula  string `json:"formula"`
	PKa      string `json:"pKa"`
	Energy   string `json:"energy"`
	Geometry string `json:"geometry"`
	Notes    string `json:"notes"`
}

// Normalize parses the raw form into a compound. Numeric fields are parsed as
// floating point; an empty string maps to absent, not zero. is_superbase is
// derived: true iff pKa is present and greater than SuperbaseThreshold. It is
// always present on the result (false when pKa is absent), so it always
// yields a property row.
func (f CompoundForm) Normalize() (*Compound, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	c := &Compound{Name: name}
	if f.Formula != "" {
		formula := f.Formula
		c.Formula = &formula
	}
	if f.Notes != "" {
		notes := f.Notes
		c.SynthesisNotes = &notes
	}

	pka, err := parseOptionalFloat(f.PKa)
	if err != nil {
		return nil, fmt.Errorf("parse pKa: %w", err)
	}
	energy, err := parseOptionalFloat(f.Energy)
	if err != nil {
		return nil, fmt.Errorf("parse energy: %w", err)
	}

	super := pka != nil && *pka > SuperbaseThreshold
	c.Properties = Properties{PKa: pka, EnergyEV: energy, IsSuperbase: &super}
	if f.Geometry != "" {
		geometry := f.Geometry
		c.Properties.Geometry = &geometry
	}
	return c, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SeedForm is the form submission for the well-known seed record.
func SeedForm() CompoundForm {
	return CompoundForm{
		Name:     SeedCompoundName,
		Formula:  "C32H60N4P",
		PKa:      "42",
		Energy:   "0.85",
		Geometry: "bulky phosphazene, superbasic",
		Notes:    "Handle under inert atmosphere.",
	}
}

// Deployment is an append-style record of a successful deployment event.
// Redelivery of the same event produces duplicate rows; no idempotency key is
// applied.
type Deployment struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	URL          string    `json:"url"`
	DeploymentID string    `json:"deployment_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// DeploymentError is an append-style record of a failed deployment event.
type DeploymentError struct {
	ID           uuid.UUID `json:"id"`
	Error        string    `json:"error"`
	DeploymentID string    `json:"deployment_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// AppStatus is the single fixed-id row describing the application's current
// deployment readiness.
type AppStatus struct {
	Status         string    `json:"status"`
	LastDeployment string    `json:"last_deployment"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OAuthProvider identifies the provider for an OAuth sign-in. Provider names
// come from configuration, not from a compiled-in list.
type OAuthProvider string

// User is an authenticated account. There are no role distinctions; any
// authenticated session has full read/write access to all compounds.
type User struct {
	ID            uuid.UUID     `json:"id"`
	Email         string        `json:"email"`
	DisplayName   string        `json:"display_name,omitempty"`
	OAuthProvider OAuthProvider `json:"oauth_provider,omitempty"`
	OAuthID       string        `json:"oauth_id,omitempty"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LastLoginAt   *time.Time    `json:"last_login_at,omitempty"`
}

// Session is an active sign-in referenced by an opaque token.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
