package views

import (
	"github.com/gin-gonic/gin"
	g "github.com/maragudk/gomponents"

	"prolific/auth"
)

// Props builds the layout state for the current request and consumes any
// pending flashes.
func Props(c *gin.Context, title string) LayoutProps {
	props := LayoutProps{
		Title:   title,
		Flashes: auth.PopFlashes(c),
	}
	if auth.SessionUserID(c) != "" {
		props.CurrentUser = auth.SessionUserName(c)
		if props.CurrentUser == "" {
			props.CurrentUser = "User"
		}
	}
	return props
}

func DashboardProps(c *gin.Context, title string) LayoutProps {
	props := Props(c, title)
	props.Dashboard = true
	return props
}

func Render(c *gin.Context, status int, node g.Node) {
	c.Render(status, Page{Node: node})
}
