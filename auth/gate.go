package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"

	"prolific/models"
)

var ErrNotOwner = errors.New("not authorized to edit this post")

// PublicPaths are reachable without a session. A path is public when it
// equals an entry or sits below it.
var PublicPaths = []string{"/", "/blog", "/login", "/files", "/public", "/sitemap.xml"}

func IsPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if path == p {
			return true
		}
		if p != "/" && strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Gate redirects anonymous requests for non-public paths to /login. The
// session user, when present, is stored on the context under "user_id".
func Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := SessionUserID(c)
		if userID != "" {
			c.Set(sessionUserKey, userID)
			c.Next()
			return
		}
		if IsPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

func CheckOwnership(userID string, post *models.Post) error {
	if userID == "" || post == nil || post.AuthorID != userID {
		return ErrNotOwner
	}
	return nil
}

type AccessState int

const (
	Unauthenticated AccessState = iota
	AuthenticatedNoAccess
	AuthenticatedAccess
)

func (s AccessState) String() string {
	switch s {
	case AuthenticatedNoAccess:
		return "authenticated-no-access"
	case AuthenticatedAccess:
		return "authenticated-access"
	default:
		return "unauthenticated"
	}
}

// Evaluate places a request for a protected post in the access state
// machine. A nil post only distinguishes signed-in from anonymous.
func Evaluate(sessionUserID string, post *models.Post) AccessState {
	if sessionUserID == "" {
		return Unauthenticated
	}
	if post == nil || CheckOwnership(sessionUserID, post) == nil {
		return AuthenticatedAccess
	}
	return AuthenticatedNoAccess
}

// RateLimit bounds requests per client IP using httprate. Rejected
// requests get 429 and stop the chain.
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiter := httprate.LimitByIP(requests, window)
	return func(c *gin.Context) {
		passed := false
		limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
			return
		}
		c.Next()
	}
}
