package betting

import (
	"time"

	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/timewindow"
)

// IsSessionOpen diz se a combinação (mercado, modalidade, sessão) ainda aceita apostas.
// Deve ser reavaliada a cada tentativa: um resultado pode ser declarado a qualquer momento.
func IsSessionOpen(m Market, bt BetType, s Session) bool {
	switch bt.ID {
	case JodiDigit, FullSangam:
		// os dois lados da aposta são acoplados
		return !m.OpenDeclared() && !m.CloseDeclared()
	case SinglePanna, DoublePanna, TriplePanna, HalfSangam:
		switch s {
		case SessionOpen:
			return !m.OpenDeclared()
		case SessionClose:
			return !m.CloseDeclared()
		}
		return false
	case SingleDigit:
		return !(m.OpenDeclared() && m.CloseDeclared())
	}
	return false
}

// IsWindowOpen é a checagem de conveniência do horário do mercado (destaque de card,
// seleção de mercado). O backend faz a checagem definitiva na escrita.
func IsWindowOpen(m Market, now time.Time, loc *time.Location) bool {
	w, err := timewindow.ParseWindow(m.OpenTime, m.CloseTime)
	if err != nil {
		return false
	}
	return w.Contains(now, loc)
}

func closedMessage(bt BetType, s Session) string {
	if bt.ID.RequiresSession() {
		if s == SessionClose {
			return msgCloseDeclared
		}
		return msgOpenDeclared
	}
	return msgMarketDeclared
}
