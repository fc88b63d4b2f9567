// Package views renders the HTML pages with gomponents.
package views

import (
	"net/http"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"prolific/auth"
)

type LayoutProps struct {
	Title       string
	Description string
	CurrentUser string
	Flashes     []auth.Flash
	Dashboard   bool
}

// Page adapts a gomponents node to gin's render.Render.
type Page struct {
	Node g.Node
}

func (p Page) Render(w http.ResponseWriter) error {
	p.WriteContentType(w)
	return p.Node.Render(w)
}

func (p Page) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}

func NavbarComponent(props LayoutProps) g.Node {
	return Nav(Class("nav"),
		Div(Class("nav-left"),
			A(Class("brand"), Href("/"), g.Text("Prolific")),
			A(Href("/blog"), g.Text("Blog")),
		),
		Div(Class("nav-right"),
			g.If(props.CurrentUser == "",
				A(Href("/login"), g.Text("Login")),
			),
			g.If(props.CurrentUser != "",
				Div(Class("row"),
					A(Href("/dashboard"), g.Text("Dashboard")),
					Span(Class("muted"), g.Textf("Logged in as %s", props.CurrentUser)),
					Form(Method("post"), Action("/logout"), Class("inline"),
						Button(Type("submit"), Class("button clear"), g.Text("Logout")),
					),
				),
			),
		),
	)
}

func FlashesComponent(flashes []auth.Flash) g.Node {
	if len(flashes) == 0 {
		return nil
	}
	items := make([]g.Node, 0, len(flashes))
	for _, f := range flashes {
		items = append(items, Div(Class("flash flash-"+f.Kind), g.Attr("role", "alert"),
			g.Text(f.Message),
			Button(Type("button"), Class("flash-dismiss"), g.Attr("onclick", "this.parentElement.remove()"), g.Text("×")),
		))
	}
	return Div(Class("flashes"), g.Group(items))
}

func SidebarComponent() g.Node {
	return Aside(Class("sidebar"),
		Ul(
			Li(A(Href("/dashboard"), g.Text("Overview"))),
			Li(A(Href("/dashboard/blog"), g.Text("Blog posts"))),
			Li(A(Href("/dashboard/blog/new"), g.Text("New post"))),
			Li(A(Href("/dashboard/portfolio"), g.Text("Portfolio"))),
			Li(A(Href("/dashboard/seo-enhancer"), g.Text("SEO enhancer"))),
		),
	)
}

func Layout(props LayoutProps, children ...g.Node) g.Node {
	title := props.Title
	if title == "" {
		title = "Prolific"
	} else {
		title += " | Prolific"
	}

	body := g.Group(children)
	if props.Dashboard {
		body = Div(Class("dashboard"), SidebarComponent(), Section(Class("dashboard-content"), g.Group(children)))
	}

	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				g.If(props.Description != "", Meta(Name("description"), Content(props.Description))),
				Link(Rel("stylesheet"), Href("/public/css/main.css")),
				TitleEl(g.Text(title)),
			),
			Body(
				Div(Class("container"),
					NavbarComponent(props),
					FlashesComponent(props.Flashes),
					Main(body),
				),
				Footer(Class("footer"),
					P(Small(g.Text("Built with Go."))),
				),
			),
		),
	)
}
