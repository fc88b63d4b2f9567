package dashboard

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"prolific/auth"
	"prolific/views"
)

type signupInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

const (
	invalidCredentialsMessage = "Invalid email or password"
	emailTakenMessage         = "An account with this email already exists"
	notOwnerMessage           = "You are not authorized to edit this post."
	unexpectedMessage         = "Something went wrong, please try again."
)

// accountMessage is the form copy for an account error.
func accountMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return invalidCredentialsMessage
	case errors.Is(err, auth.ErrEmailTaken):
		return emailTakenMessage
	default:
		return unexpectedMessage
	}
}

func signupMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return unexpectedMessage
	}
	switch fe := verrs[0]; {
	case fe.Field() == "Password" && fe.Tag() == "min":
		return "Password must be at least 6 characters"
	case fe.Field() == "Email" && fe.Tag() == "email":
		return "Please enter a valid email"
	default:
		return fe.Field() + " is required"
	}
}

func (d *DashboardModule) loginPage(c *gin.Context) {
	if auth.SessionUserID(c) != "" {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	views.Render(c, http.StatusOK, views.LoginPage(views.Props(c, "Login"), views.LoginForm{}))
}

func (d *DashboardModule) loginPost(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := d.accounts.Login(c.Request.Context(), email, password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Printf("Error logging in %s: %v", email, err)
			status = http.StatusInternalServerError
		}
		views.Render(c, status, views.LoginPage(views.Props(c, "Login"), views.LoginForm{
			Email: email,
			Error: accountMessage(err),
		}))
		return
	}

	if err := auth.SignIn(c, user); err != nil {
		log.Printf("Error saving session: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	auth.AddFlash(c, auth.FlashSuccess, "Welcome back, "+user.Name+"!")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (d *DashboardModule) signupPost(c *gin.Context) {
	in := signupInput{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}
	form := views.LoginForm{Name: in.Name, SignupEmail: in.Email}

	if err := validate.Struct(in); err != nil {
		form.SignupError = signupMessage(err)
		views.Render(c, http.StatusUnprocessableEntity, views.LoginPage(views.Props(c, "Login"), form))
		return
	}

	user, err := d.accounts.Signup(c.Request.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, auth.ErrEmailTaken) {
			log.Printf("Error signing up %s: %v", in.Email, err)
			status = http.StatusInternalServerError
		}
		form.SignupError = accountMessage(err)
		views.Render(c, status, views.LoginPage(views.Props(c, "Login"), form))
		return
	}

	if err := auth.SignIn(c, user); err != nil {
		log.Printf("Error saving session: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	log.Printf("New account %s", user.ID)
	auth.AddFlash(c, auth.FlashSuccess, "Welcome to Prolific, "+user.Name+"!")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (d *DashboardModule) logout(c *gin.Context) {
	if err := auth.SignOut(c); err != nil {
		log.Printf("Error clearing session: %v", err)
	}
	c.Redirect(http.StatusFound, "/login")
}
