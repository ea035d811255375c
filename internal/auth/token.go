package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("auth: jeton invalide")

// Claims sont les champs du jeton d'accès utilisés par la boutique.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// TokenVerifier lit les jetons d'accès émis par le service d'authentification.
// Avec un secret, la signature HS256 est vérifiée ; sans secret, le jeton est
// seulement décodé (le service distant reste l'autorité).
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

func (v *TokenVerifier) Parse(tokenString string) (Claims, error) {
	claims := jwt.MapClaims{}

	if v == nil || len(v.secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
			}
			return v.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	out := Claims{}
	out.Subject, _ = claims.GetSubject()
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
