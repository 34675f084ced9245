package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

var ErrInvalid = errors.New("invalid catalog")

// Catalog holds the practitioners and game types the business offers.
// It is read-only once loaded.
type Catalog struct {
	practitioners []domain.Practitioner
	gameTypes     []domain.GameType

	practitionerByID map[string]domain.Practitioner
	gameTypeByID     map[string]domain.GameType
}

type file struct {
	Practitioners []domain.Practitioner `yaml:"practitioners"`
	GameTypes     []domain.GameType     `yaml:"game_types"`
}

// Load reads a catalog from path. An empty path selects the built-in catalog.
func Load(path string) (*Catalog, error) {
	const op = "catalog.Load"

	raw := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		raw = b
	}

	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return New(f.Practitioners, f.GameTypes)
}

func New(practitioners []domain.Practitioner, gameTypes []domain.GameType) (*Catalog, error) {
	if len(practitioners) == 0 {
		return nil, fmt.Errorf("%w: no practitioners", ErrInvalid)
	}
	if len(gameTypes) == 0 {
		return nil, fmt.Errorf("%w: no game types", ErrInvalid)
	}

	c := &Catalog{
		practitionerByID: make(map[string]domain.Practitioner, len(practitioners)),
		gameTypeByID:     make(map[string]domain.GameType, len(gameTypes)),
	}

	one := decimal.NewFromInt(1)
	for _, p := range practitioners {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("%w: practitioner id and name are required", ErrInvalid)
		}
		if _, dup := c.practitionerByID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate practitioner %q", ErrInvalid, p.ID)
		}
		if !p.CommissionMultiplier.IsPositive() || p.CommissionMultiplier.GreaterThan(one) {
			return nil, fmt.Errorf("%w: practitioner %q multiplier must be in (0,1]", ErrInvalid, p.ID)
		}
		c.practitionerByID[p.ID] = p
		c.practitioners = append(c.practitioners, p)
	}

	for _, gt := range gameTypes {
		if gt.ID == "" || gt.Name == "" {
			return nil, fmt.Errorf("%w: game type id and name are required", ErrInvalid)
		}
		if _, dup := c.gameTypeByID[gt.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate game type %q", ErrInvalid, gt.ID)
		}
		if gt.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: game type %q duration must be positive", ErrInvalid, gt.ID)
		}
		if gt.BasePrice.IsNegative() {
			return nil, fmt.Errorf("%w: game type %q price is negative", ErrInvalid, gt.ID)
		}
		c.gameTypeByID[gt.ID] = gt
		c.gameTypes = append(c.gameTypes, gt)
	}

	return c, nil
}

func (c *Catalog) Practitioners() []domain.Practitioner {
	out := make([]domain.Practitioner, len(c.practitioners))
	copy(out, c.practitioners)
	return out
}

func (c *Catalog) GameTypes() []domain.GameType {
	out := make([]domain.GameType, len(c.gameTypes))
	copy(out, c.gameTypes)
	return out
}

func (c *Catalog) Practitioner(id string) (domain.Practitioner, bool) {
	p, ok := c.practitionerByID[id]
	return p, ok
}

func (c *Catalog) GameType(id string) (domain.GameType, bool) {
	gt, ok := c.gameTypeByID[id]
	return gt, ok
}

// Duration returns the expected minutes of a game type, 0 when unknown.
func (c *Catalog) Duration(gameTypeID string) int {
	return c.gameTypeByID[gameTypeID].DurationMinutes
}

func (c *Catalog) PractitionerName(id string) string {
	if p, ok := c.practitionerByID[id]; ok {
		return p.Name
	}
	return id
}

func (c *Catalog) GameTypeName(id string) string {
	if gt, ok := c.gameTypeByID[id]; ok {
		return gt.Name
	}
	return id
}
