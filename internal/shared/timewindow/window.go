package timewindow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidClock = errors.New("invalid time of day")

// Clock é um horário do dia sem data (ex.: "03:15 PM" -> 15:15).
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock aceita "hh:mm AM/PM" (meridiano em qualquer caixa, com ou sem espaço)
// e também "HH:MM" no formato 24h.
func ParseClock(s string) (Clock, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return Clock{}, ErrInvalidClock
	}

	var meridiem string
	if strings.HasSuffix(raw, "AM") || strings.HasSuffix(raw, "PM") {
		meridiem = raw[len(raw)-2:]
		raw = strings.TrimSpace(raw[:len(raw)-2])
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 || parts[0] == "" || len(parts[1]) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	switch meridiem {
	case "":
		if h < 0 || h > 23 {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	default:
		if h < 1 || h > 12 {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		if meridiem == "PM" && h != 12 {
			h += 12
		}
		if meridiem == "AM" && h == 12 {
			h = 0
		}
	}
	return Clock{Hour: h, Minute: m}, nil
}

// On retorna o instante desse horário no dia (e fuso) de day.
func (c Clock) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, c.Hour, c.Minute, 0, 0, day.Location())
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Window é a janela diária [Open, Close] de um mercado.
type Window struct {
	Open  Clock
	Close Clock
}

func ParseWindow(open, close string) (Window, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Window{}, fmt.Errorf("open: %w", err)
	}
	c, err := ParseClock(close)
	if err != nil {
		return Window{}, fmt.Errorf("close: %w", err)
	}
	return Window{Open: o, Close: c}, nil
}

// Contains avalia now contra a janela do dia corrente no fuso loc (limites inclusivos).
// Quando Close < Open a janela atravessa a meia-noite.
func (w Window) Contains(now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	open := w.Open.On(local)
	close := w.Close.On(local)

	if !close.Before(open) {
		return !local.Before(open) && !local.After(close)
	}
	return !local.Before(open) || !local.After(close)
}
