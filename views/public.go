package views

import (
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"prolific/models"
)

type Project struct {
	Title        string
	Description  string
	ImageURL     string
	Technologies []string
	URL          string
}

func projectCard(p Project) g.Node {
	techs := make([]g.Node, 0, len(p.Technologies))
	for _, t := range p.Technologies {
		techs = append(techs, Span(Class("tag"), g.Text(t)))
	}
	return Article(Class("card"),
		g.If(p.ImageURL != "", Img(Src(p.ImageURL), Alt(p.Title))),
		H3(g.Text(p.Title)),
		P(g.Text(p.Description)),
		g.If(len(techs) > 0, Div(Class("tags"), Strong(g.Text("Technologies: ")), g.Group(techs))),
		g.If(p.URL != "", A(Href(p.URL), g.Text("View project"))),
	)
}

func HomePage(props LayoutProps, projects []Project) g.Node {
	cards := make([]g.Node, 0, len(projects))
	for _, p := range projects {
		cards = append(cards, projectCard(p))
	}

	return Layout(props,
		Section(Class("hero"),
			H1(g.Text("Hi, I build things for the web")),
			P(g.Text("Full-stack developer passionate about creating modern, responsive web applications. Let's build something amazing together!")),
			Div(Class("actions"),
				A(Class("button primary"), Href("#projects"), g.Text("View Projects")),
				A(Class("button outline"), Href("/blog"), g.Text("Read My Blog")),
			),
		),
		Section(ID("projects"),
			H2(g.Text("Featured Projects")),
			Div(Class("grid"), g.Group(cards)),
		),
	)
}

func postCard(post models.Post) g.Node {
	href := "/blog/" + post.Slug
	return Article(Class("card"),
		g.If(post.ImageURL != "", A(Href(href), Img(Src(post.ImageURL), Alt(post.Title)))),
		H3(A(Href(href), g.Text(post.Title))),
		P(Class("muted"), g.Textf("By %s on %s", post.AuthorName, post.CreatedAt.Format("January 2, 2006"))),
		P(g.Text(post.Excerpt(150))),
		A(Href(href), g.Text("Read more")),
	)
}

func BlogListPage(props LayoutProps, posts []models.Post) g.Node {
	cards := make([]g.Node, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, postCard(p))
	}

	return Layout(props,
		H1(g.Text("Blog")),
		g.If(len(posts) == 0, P(Class("muted"), g.Text("No posts published yet. Check back soon!"))),
		Div(Class("grid"), g.Group(cards)),
	)
}

// BlogPostPage renders a published post. body is the already sanitized HTML
// of the markdown content.
func BlogPostPage(props LayoutProps, post *models.Post, body string) g.Node {
	return Layout(props,
		Article(Class("post"),
			Header(
				H1(g.Text(post.Title)),
				P(Class("muted"), g.Textf("By %s on %s", post.AuthorName, post.CreatedAt.Format("January 2, 2006"))),
			),
			g.If(post.ImageURL != "", Img(Class("cover"), Src(post.ImageURL), Alt(post.Title))),
			Div(Class("post-body"), g.Raw(body)),
			P(A(Href("/blog"), g.Text("← Back to blog"))),
		),
	)
}

func NotFoundPage(props LayoutProps) g.Node {
	if props.Title == "" {
		props.Title = "Not found"
	}
	return Layout(props,
		Section(Class("not-found"),
			H1(g.Text("404")),
			P(g.Text("The page you are looking for could not be found.")),
			A(Class("button"), Href("/blog"), g.Text("Back to blog")),
		),
	)
}
