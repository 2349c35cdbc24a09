// Package dice parses and rolls tabletop dice notation such as "2d6+3".
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Limits on a single expression.
const (
	MinCount = 1
	MaxCount = 30
	MinSides = 2
	MaxSides = 1000
)

var (
	// ErrMalformed is returned when an expression is not <count>d<sides>[+|-<mod>].
	ErrMalformed = errors.New("invalid expression, use e.g. 2d6+3")
	// ErrOutOfRange is returned when the count or sides fall outside the limits.
	ErrOutOfRange = errors.New("values out of range")
)

// diceRegex matches the whitespace-stripped, lower-cased expression.
var diceRegex = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Record is the outcome of one roll as kept in the board's history.
type Record struct {
	Expr       string    `json:"expr"`
	Rolls      []int     `json:"rolls"`
	Mod        int       `json:"mod"`
	Total      int       `json:"total"`
	PlayerName string    `json:"playerName"`
	At         time.Time `json:"at"`
}

// String renders the record the way the history panel shows it.
func (r Record) String() string {
	mod := ""
	if r.Mod > 0 {
		mod = fmt.Sprintf(" +%d", r.Mod)
	} else if r.Mod < 0 {
		mod = fmt.Sprintf(" %d", r.Mod)
	}
	return fmt.Sprintf("[%s] %s: %s => [%s]%s = %d",
		r.At.Format("15:04:05"), r.PlayerName, r.Expr, joinInts(r.Rolls, ", "), mod, r.Total)
}

// Roller rolls dice with a configurable random source.
type Roller struct {
	rng *rand.Rand
	now func() time.Time
}

// NewRoller creates a new Roller with the given random source.
func NewRoller(rng *rand.Rand) *Roller {
	return &Roller{rng: rng, now: time.Now}
}

// SetClock overrides the timestamp source.
func (r *Roller) SetClock(now func() time.Time) {
	r.now = now
}

// Roll evaluates expression on behalf of playerName.
func (r *Roller) Roll(expression, playerName string) (*Record, error) {
	count, sides, mod, cleaned, err := Parse(expression)
	if err != nil {
		return nil, err
	}

	rolls := make([]int, count)
	total := 0
	for i := range rolls {
		rolls[i] = r.rng.Intn(sides) + 1
		total += rolls[i]
	}

	return &Record{
		Expr:       cleaned,
		Rolls:      rolls,
		Mod:        mod,
		Total:      total + mod,
		PlayerName: playerName,
		At:         r.now(),
	}, nil
}

// Parse validates an expression and returns its parts along with the
// whitespace-stripped form.
func Parse(expression string) (count, sides, mod int, cleaned string, err error) {
	cleaned = strings.Join(strings.Fields(expression), "")
	matches := diceRegex.FindStringSubmatch(strings.ToLower(cleaned))
	if matches == nil {
		return 0, 0, 0, cleaned, fmt.Errorf("%w: %q", ErrMalformed, expression)
	}

	count, err = strconv.Atoi(matches[1])
	if err != nil {
		return 0, 0, 0, cleaned, fmt.Errorf("%w: count %s", ErrOutOfRange, matches[1])
	}
	sides, err = strconv.Atoi(matches[2])
	if err != nil {
		return 0, 0, 0, cleaned, fmt.Errorf("%w: sides %s", ErrOutOfRange, matches[2])
	}
	if matches[3] != "" {
		mod, err = strconv.Atoi(matches[3])
		if err != nil {
			return 0, 0, 0, cleaned, fmt.Errorf("%w: modifier %s", ErrOutOfRange, matches[3])
		}
	}

	if count < MinCount || count > MaxCount || sides < MinSides || sides > MaxSides {
		return 0, 0, 0, cleaned, fmt.Errorf("%w: %dd%d", ErrOutOfRange, count, sides)
	}
	return count, sides, mod, cleaned, nil
}

// joinInts joins a slice of ints with a separator
func joinInts(nums []int, sep string) string {
	strs := make([]string, len(nums))
	for i, n := range nums {
		strs[i] = strconv.Itoa(n)
	}
	return strings.Join(strs, sep)
}
