package auth

import (
	"log"
	"strings"

	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"prolific/models"
)

const (
	SessionCookieName = "prolific-session"
	sessionUserKey    = "user_id"
	sessionNameKey    = "user_name"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Kind    string
	Message string
}

// NewSessionStore keeps session data in the database and only the signed
// session id in the cookie, so SignOut revokes the id for every copy of
// the cookie.
func NewSessionStore(db *gorm.DB, secret []byte, secure bool) sessions.Store {
	store := gormsessions.NewStore(db, true, secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
	})
	return store
}

func SignIn(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	session.Set(sessionNameKey, user.Name)
	return session.Save()
}

// SignOut deletes the stored session and expires the cookie.
func SignOut(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true})
	return session.Save()
}

// SessionUserID returns the signed-in user id, or "" for an anonymous
// request.
func SessionUserID(c *gin.Context) string {
	if id := c.GetString(sessionUserKey); id != "" {
		return id
	}
	id, _ := sessions.Default(c).Get(sessionUserKey).(string)
	return id
}

// SessionUserName returns the display name saved at sign in.
func SessionUserName(c *gin.Context) string {
	name, _ := sessions.Default(c).Get(sessionNameKey).(string)
	return name
}

func AddFlash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(kind + "|" + message)
	if err := session.Save(); err != nil {
		log.Printf("Error saving flash: %v", err)
	}
}

// PopFlashes returns and clears the pending notifications.
func PopFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		log.Printf("Error clearing flashes: %v", err)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, r := range raw {
		s, ok := r.(string)
		if !ok {
			continue
		}
		kind, message, found := strings.Cut(s, "|")
		if !found {
			kind, message = FlashSuccess, s
		}
		flashes = append(flashes, Flash{Kind: kind, Message: message})
	}
	return flashes
}
