// Package promo evaluates promo codes. Each code carries a CEL condition over
// the booking being priced and a percentage or flat discount.
package promo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// ErrUnknownCode is returned for codes that are not configured.
	ErrUnknownCode = errors.New("unknown promo code")
	// ErrNotEligible is returned when the code's condition evaluates to false.
	ErrNotEligible = errors.New("booking is not eligible for promo code")
)

// Rule describes one promo code.
type Rule struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Condition   string  `json:"condition"`
	PercentOff  float64 `json:"percent_off"`
	AmountOff   float64 `json:"amount_off"`
}

// Input is the booking data a condition can refer to as `booking.<field>`.
type Input struct {
	TotalPrice    float64
	Passengers    int
	Seats         []string
	CabinClass    string
	BookingSource string
	Origin        string
	Destination   string
}

func (in Input) vars() map[string]any {
	seats := in.Seats
	if seats == nil {
		seats = []string{}
	}
	return map[string]any{
		"total_price":    in.TotalPrice,
		"passengers":     in.Passengers,
		"seats":          seats,
		"cabin_class":    in.CabinClass,
		"booking_source": in.BookingSource,
		"origin":         in.Origin,
		"destination":    in.Destination,
	}
}

// DefaultRules are used when no rules file is configured.
var DefaultRules = []Rule{
	{Code: "WELCOME10", Description: "10% off bookings from 1000", Condition: "booking.total_price >= 1000.0", PercentOff: 10},
	{Code: "FAMILY15", Description: "15% off for three or more travellers", Condition: "booking.passengers >= 3", PercentOff: 15},
	{Code: "SEATSAVER", Description: "500 off when seats are chosen", Condition: "size(booking.seats) > 0", AmountOff: 500},
}

// Engine resolves codes to rules and caches compiled conditions.
type Engine struct {
	rules map[string]Rule
	env   *cel.Env

	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewEngine validates and compiles every rule up front so a bad condition
// fails at startup rather than on the first booking.
func NewEngine(rules []Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("booking", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	e := &Engine{
		rules: make(map[string]Rule, len(rules)),
		env:   env,
		cache: make(map[string]cel.Program),
	}
	for _, r := range rules {
		code := normalize(r.Code)
		if code == "" {
			return nil, errors.New("promo rule without code")
		}
		if r.PercentOff < 0 || r.PercentOff > 100 || r.AmountOff < 0 {
			return nil, fmt.Errorf("promo %s: invalid discount", code)
		}
		if strings.TrimSpace(r.Condition) == "" {
			r.Condition = "true"
		}
		if _, err := e.program(r.Condition); err != nil {
			return nil, fmt.Errorf("promo %s: %w", code, err)
		}
		r.Code = code
		e.rules[code] = r
	}
	return e, nil
}

// LoadRules reads rules from a JSON file holding an array of Rule. An empty
// path yields DefaultRules.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read promo rules: %w", err)
	}
	var rules []Rule
	if err := json.Unmarshal(b, &rules); err != nil {
		return nil, fmt.Errorf("decode promo rules: %w", err)
	}
	return rules, nil
}

// Rule returns the rule for code.
func (e *Engine) Rule(code string) (Rule, bool) {
	r, ok := e.rules[normalize(code)]
	return r, ok
}

// Apply returns the discount code grants on in. The discount never exceeds
// in.TotalPrice.
func (e *Engine) Apply(code string, in Input) (float64, error) {
	r, ok := e.Rule(code)
	if !ok {
		return 0, ErrUnknownCode
	}
	prg, err := e.program(r.Condition)
	if err != nil {
		return 0, err
	}
	out, _, err := prg.Eval(map[string]any{"booking": in.vars()})
	if err != nil {
		return 0, fmt.Errorf("CEL evaluation error: %w", err)
	}
	eligible, ok := out.Value().(bool)
	if !ok {
		return 0, fmt.Errorf("CEL expression did not return boolean, got %T", out.Value())
	}
	if !eligible {
		return 0, ErrNotEligible
	}

	discount := in.TotalPrice*r.PercentOff/100 + r.AmountOff
	discount = math.Min(discount, in.TotalPrice)
	return math.Round(discount*100) / 100, nil
}

// CacheSize returns the number of compiled conditions.
func (e *Engine) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func (e *Engine) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.cache[expr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	e.mu.Lock()
	e.cache[expr] = prg
	e.mu.Unlock()
	return prg, nil
}

func normalize(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }
