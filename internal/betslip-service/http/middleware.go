package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxToken
)

const msgLoginAgain = "Please login again"

// requireUser troca o token Bearer pelo userId da sessão. Rotas autenticadas
// nunca leem o usuário da URL.
func (a *API) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			a.writeError(w, r, betting.NewError(betting.KindUnauthorized, msgLoginAgain))
			return
		}
		userID, err := a.Auth.Resolve(r.Context(), token)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		ctx = context.WithValue(ctx, ctxToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentUser(r *http.Request) string {
	id, _ := r.Context().Value(ctxUserID).(string)
	return id
}

func sessionToken(r *http.Request) string {
	tok, _ := r.Context().Value(ctxToken).(string)
	return tok
}
