package game

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"chosenoffset.com/tabletop/internal/assets"
	"chosenoffset.com/tabletop/internal/board"
	"chosenoffset.com/tabletop/internal/dice"
)

var (
	// ErrUnknownCommand is returned for a line that is neither a command nor
	// a dice expression.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a command's arguments are missing or invalid.
	ErrUsage = errors.New("usage")
	// ErrNoToken is returned by sheet commands when no detail panel is open.
	ErrNoToken = errors.New("open a token first (double-click it)")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type command struct {
	usage string
	run   func(g *Game, args []string) (string, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"roll":   {"roll <expr>", (*Game).cmdRoll},
		"player": {"player <name> [#rrggbb]", (*Game).cmdPlayer},
		"token":  {"token <name> [size]", (*Game).cmdToken},
		"turn":   {"turn <player name>", (*Game).cmdTurn},
		"map":    {"map <path>", (*Game).cmdMap},
		"avatar": {"avatar <path.png>", (*Game).cmdAvatar},
		"hp":     {"hp <hp>[/<max>]", (*Game).cmdHP},
		"fog":    {"fog <radius>", (*Game).cmdFog},
		"grid":   {"grid <size>", (*Game).cmdGrid},
		"save":   {"save", (*Game).cmdSave},
		"load":   {"load", (*Game).cmdLoad},
		"reset":  {"reset", (*Game).cmdReset},
	}
}

// Execute runs one command line and returns the message to show.
func (g *Game) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	name := strings.ToLower(fields[0])
	cmd, ok := commands[name]
	if !ok {
		if _, _, _, _, err := dice.Parse(line); err == nil || errors.Is(err, dice.ErrOutOfRange) {
			return g.roll(line)
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	msg, err := cmd.run(g, fields[1:])
	if errors.Is(err, ErrUsage) {
		return "", fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}
	return msg, err
}

func (g *Game) roll(expr string) (string, error) {
	rec, err := g.board.RollDice(expr)
	if err != nil {
		return "", err
	}
	return rec.String(), nil
}

func (g *Game) cmdRoll(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrUsage
	}
	return g.roll(strings.Join(args, ""))
}

func (g *Game) cmdPlayer(args []string) (string, error) {
	color := ""
	if n := len(args); n > 1 && hexColor.MatchString(args[n-1]) {
		color = args[n-1]
		args = args[:n-1]
	}
	if len(args) == 0 {
		return "", ErrUsage
	}
	p, err := g.board.AddPlayer(strings.Join(args, " "), color)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s joined.", p.Name), nil
}

func (g *Game) cmdToken(args []string) (string, error) {
	size := 0.0
	if n := len(args); n > 0 {
		if v, err := strconv.ParseFloat(args[n-1], 64); err == nil {
			size = v
			args = args[:n-1]
		}
	}
	owner := g.board.ActivePlayer()
	t, err := g.board.AddToken(owner.ID, strings.Join(args, " "), size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s placed for %s.", t.Name, owner.Name), nil
}

func (g *Game) cmdTurn(args []string) (string, error) {
	name := strings.Join(args, " ")
	if name == "" {
		return "", ErrUsage
	}
	for _, p := range g.board.Players() {
		if strings.EqualFold(p.Name, name) {
			g.board.SetActivePlayer(p.ID)
			return "", nil
		}
	}
	return "", fmt.Errorf("%w: %s", board.ErrUnknownPlayer, name)
}

func (g *Game) cmdMap(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrUsage
	}
	if err := g.OpenMapFile(strings.Join(args, " ")); err != nil {
		g.log.WithError(err).Warn("Map unavailable")
		return "", errors.New(msgImageFailed)
	}
	return "", nil
}

func (g *Game) cmdAvatar(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrUsage
	}
	t, ok := g.DetailToken()
	if !ok {
		return "", ErrNoToken
	}
	data, err := assets.Read(strings.Join(args, " "))
	if err != nil {
		g.log.WithError(err).Warn("Avatar unavailable")
		return "", errors.New(msgImageFailed)
	}
	src, err := assets.PNGDataURI(data)
	if err != nil {
		return "", err
	}
	if _, err := g.board.UpdateSheet(t.ID, board.SheetPatch{Avatar: &src}); err != nil {
		return "", err
	}
	g.cache.Invalidate(src)
	delete(g.failed, src)
	return "Avatar updated.", nil
}

func (g *Game) cmdHP(args []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	t, ok := g.DetailToken()
	if !ok {
		return "", ErrNoToken
	}
	hpStr, maxStr, hasMax := strings.Cut(args[0], "/")
	var patch board.SheetPatch
	hp, err := strconv.Atoi(hpStr)
	if err != nil {
		return "", ErrUsage
	}
	patch.HP = &hp
	if hasMax {
		hpMax, err := strconv.Atoi(maxStr)
		if err != nil {
			return "", ErrUsage
		}
		patch.HPMax = &hpMax
	}
	t, err = g.board.UpdateSheet(t.ID, patch)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %d/%d HP", t.Name, t.Sheet.HP, t.Sheet.HPMax), nil
}

// numberArg parses a numeric argument; anything unparsable becomes 0, which
// the board turns into the default.
func numberArg(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, ErrUsage
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}

func (g *Game) cmdFog(args []string) (string, error) {
	v, err := numberArg(args)
	if err != nil {
		return "", err
	}
	g.board.SetFogRadius(v)
	return fmt.Sprintf("Fog brush %.0f.", g.board.Tools().FogRadius), nil
}

func (g *Game) cmdGrid(args []string) (string, error) {
	v, err := numberArg(args)
	if err != nil {
		return "", err
	}
	g.board.SetGridSize(v)
	return fmt.Sprintf("Grid %.0f.", g.board.Grid().Size), nil
}

func (g *Game) cmdSave([]string) (string, error) {
	g.saveWithStatus()
	return "", nil
}

func (g *Game) cmdLoad([]string) (string, error) {
	g.loadWithStatus()
	return "", nil
}

func (g *Game) cmdReset([]string) (string, error) {
	if err := g.Reset(); err != nil {
		return "", err
	}
	return msgReset, nil
}
