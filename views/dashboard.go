package views

import (
	"strconv"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"prolific/analytics"
	"prolific/models"
	"prolific/seo"
)

type LoginForm struct {
	Email       string
	Name        string
	SignupEmail string
	Error       string
	SignupError string
}

func fieldError(msg string) g.Node {
	if msg == "" {
		return nil
	}
	return P(Class("field-error"), g.Text(msg))
}

func LoginPage(props LayoutProps, form LoginForm) g.Node {
	return Layout(props,
		Div(Class("auth-forms"),
			Section(Class("card"),
				H2(g.Text("Login")),
				fieldError(form.Error),
				Form(Method("post"), Action("/login"),
					Label(For("email"), g.Text("Email")),
					Input(Type("email"), ID("email"), Name("email"), Value(form.Email), Required()),
					Label(For("password"), g.Text("Password")),
					Input(Type("password"), ID("password"), Name("password"), g.Attr("minlength", "6"), Required()),
					Button(Type("submit"), Class("button primary"), g.Text("Login")),
				),
			),
			Section(Class("card"),
				H2(g.Text("Create an account")),
				fieldError(form.SignupError),
				Form(Method("post"), Action("/login/signup"),
					Label(For("signup-name"), g.Text("Name")),
					Input(Type("text"), ID("signup-name"), Name("name"), Value(form.Name), Required()),
					Label(For("signup-email"), g.Text("Email")),
					Input(Type("email"), ID("signup-email"), Name("email"), Value(form.SignupEmail), Required()),
					Label(For("signup-password"), g.Text("Password")),
					Input(Type("password"), ID("signup-password"), Name("password"), g.Attr("minlength", "6"), Required()),
					Button(Type("submit"), Class("button"), g.Text("Sign up")),
				),
			),
		),
	)
}

type DashboardStats struct {
	Posts     int
	Published int
	Drafts    int
	Views     int64
	Daily     []analytics.DayViews
}

func dailyViews(days []analytics.DayViews) g.Node {
	if len(days) == 0 {
		return nil
	}
	rows := make([]g.Node, 0, len(days))
	for _, d := range days {
		rows = append(rows, Tr(Td(g.Text(d.Date)), Td(g.Text(strconv.FormatInt(d.Count, 10)))))
	}
	return Section(Class("card"),
		H2(g.Text("Views in the last week")),
		Table(
			THead(Tr(Th(g.Text("Day")), Th(g.Text("Views")))),
			TBody(g.Group(rows)),
		),
	)
}

func DashboardPage(props LayoutProps, name string, stats DashboardStats) g.Node {
	if name == "" {
		name = "User"
	}
	return Layout(props,
		Section(Class("card"),
			H1(g.Textf("Welcome to your Dashboard, %s!", name)),
			P(Class("muted"), g.Text("Manage your blog posts, portfolio and SEO from here.")),
		),
		Div(Class("grid"),
			statCard("Blog posts", stats.Posts, "/dashboard/blog", "Manage posts"),
			statCard("Published", stats.Published, "/blog", "View blog"),
			statCard("Drafts", stats.Drafts, "/dashboard/blog/new", "Write a post"),
			Article(Class("card stat"),
				H3(g.Text("Post views")),
				P(Class("stat-value"), g.Text(strconv.FormatInt(stats.Views, 10))),
			),
		),
		dailyViews(stats.Daily),
	)
}

func statCard(label string, n int, href, link string) g.Node {
	return Article(Class("card stat"),
		H3(g.Text(label)),
		P(Class("stat-value"), g.Text(strconv.Itoa(n))),
		A(Href(href), g.Text(link)),
	)
}

func statusBadge(s models.Status) g.Node {
	return Span(Class("badge badge-"+string(s)), g.Text(string(s)))
}

func PostListPage(props LayoutProps, posts []models.Post) g.Node {
	rows := make([]g.Node, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, Tr(
			Td(g.Text(p.Title)),
			Td(statusBadge(p.Status)),
			Td(g.Text(p.CreatedAt.Format("2006-01-02"))),
			Td(Class("actions"),
				g.If(p.Status == models.StatusPublished, A(Href("/blog/"+p.Slug), g.Text("View"))),
				A(Href("/dashboard/blog/edit/"+p.ID), g.Text("Edit")),
				Form(Method("post"), Action("/dashboard/blog/delete/"+p.ID), Class("inline"),
					g.Attr("onsubmit", "return confirm('Delete this post? This cannot be undone.')"),
					Button(Type("submit"), Class("button error"), g.Text("Delete")),
				),
			),
		))
	}

	return Layout(props,
		Header(Class("row"),
			H1(g.Text("Blog posts")),
			A(Class("button primary"), Href("/dashboard/blog/new"), g.Text("New post")),
		),
		g.If(len(posts) == 0, P(Class("muted"), g.Text("You have not written any posts yet."))),
		g.If(len(posts) > 0, Table(
			THead(Tr(Th(g.Text("Title")), Th(g.Text("Status")), Th(g.Text("Created")), Th())),
			TBody(g.Group(rows)),
		)),
	)
}

type PostForm struct {
	ID       string
	Title    string
	Content  string
	Status   models.Status
	ImageURL string
	Errors   map[string]string
}

func (f PostForm) editing() bool {
	return f.ID != ""
}

func statusOption(value models.Status, label string, current models.Status) g.Node {
	return Option(Value(string(value)), g.If(value == current, Selected()), g.Text(label))
}

func PostFormPage(props LayoutProps, form PostForm) g.Node {
	action := "/dashboard/blog/new"
	heading := "Create New Blog Post"
	imageLabel := "Cover Image"
	if form.editing() {
		action = "/dashboard/blog/edit/" + form.ID
		heading = "Edit Blog Post"
		imageLabel = "Cover Image (Optional: replace existing)"
	}

	return Layout(props,
		Section(Class("card"),
			Header(Class("row"),
				H1(g.Text(heading)),
				A(Class("button outline"), Href("/dashboard/blog"), g.Text("Back")),
			),
			fieldError(form.Errors["form"]),
			Form(Method("post"), Action(action), g.Attr("enctype", "multipart/form-data"),
				g.Attr("onsubmit", "this.querySelector('button[type=submit]').disabled = true"),
				Label(For("title"), g.Text("Title")),
				Input(Type("text"), ID("title"), Name("title"), Value(form.Title)),
				fieldError(form.Errors["title"]),

				Label(For("content"), g.Text("Content (Markdown)")),
				Textarea(ID("content"), Name("content"), g.Attr("rows", "12"), g.Text(form.Content)),
				fieldError(form.Errors["content"]),

				g.If(form.editing(), g.Group([]g.Node{
					Label(For("status"), g.Text("Status")),
					Select(ID("status"), Name("status"),
						statusOption(models.StatusDraft, "Draft", form.Status),
						statusOption(models.StatusPublished, "Published", form.Status),
					),
					fieldError(form.Errors["status"]),
				})),

				Label(For("image"), g.Text(imageLabel)),
				g.If(form.ImageURL != "", Img(Class("preview"), Src(form.ImageURL), Alt("Current cover image"))),
				Input(Type("file"), ID("image"), Name("image"), Accept("image/jpeg,image/jpg,image/png,image/webp")),
				fieldError(form.Errors["image"]),

				Button(Type("submit"), Class("button primary"), g.If(form.editing(), g.Text("Update Post")), g.If(!form.editing(), g.Text("Create Post"))),
			),
		),
	)
}

func PortfolioPage(props LayoutProps, items []models.Post) g.Node {
	cards := make([]g.Node, 0, len(items))
	for _, item := range items {
		cards = append(cards, Article(Class("card"),
			g.If(item.ImageURL != "", Img(Src(item.ImageURL), Alt(item.Title))),
			H3(g.Text(item.Title)),
			statusBadge(item.Status),
			P(g.Text(item.Excerpt(120))),
			P(Class("muted"), g.Textf("Updated %s", item.UpdatedAt.Format("January 2, 2006"))),
			A(Href("/dashboard/blog/edit/"+item.ID), g.Text("Edit")),
		))
	}

	return Layout(props,
		Header(
			H1(g.Text("Portfolio Items")),
			P(Class("muted"), g.Text("Manage your showcased projects.")),
		),
		g.If(len(items) == 0, P(Class("muted"), g.Text("No portfolio items found."))),
		Div(Class("grid"), g.Group(cards)),
	)
}

type SEOForm struct {
	Content    string
	Keywords   string
	FieldError string
	Error      string
	Disabled   bool
	Result     *seo.Output
}

func seoResult(out *seo.Output) g.Node {
	keywords := make([]g.Node, 0, len(out.KeywordSuggestions))
	for _, k := range out.KeywordSuggestions {
		keywords = append(keywords, Span(Class("tag"), g.Text(k)))
	}
	return Section(Class("card seo-result"),
		H2(g.Text("Suggestions")),
		H3(g.Text("Title")),
		P(g.Text(out.TitleSuggestion)),
		H3(g.Text("Meta description")),
		P(g.Text(out.MetaDescriptionSuggestion)),
		H3(g.Text("Keywords")),
		Div(Class("tags"), g.Group(keywords)),
		H3(g.Text("Content optimization")),
		P(g.Text(out.ContentOptimizationSuggestions)),
	)
}

func SEOEnhancerPage(props LayoutProps, form SEOForm) g.Node {
	var result g.Node
	if form.Result != nil {
		result = seoResult(form.Result)
	}

	return Layout(props,
		Section(Class("card"),
			H1(g.Text("SEO Enhancer")),
			P(Class("muted"), g.Text("Paste your content and get suggestions for title, meta description and keywords.")),
			g.If(form.Disabled, P(Class("field-error"), g.Text("The SEO enhancer is not configured on this server."))),
			fieldError(form.Error),
			Form(Method("post"), Action("/dashboard/seo-enhancer"),
				g.Attr("onsubmit", "this.querySelector('button[type=submit]').disabled = true"),
				Label(For("content"), g.Text("Content")),
				Textarea(ID("content"), Name("content"), g.Attr("rows", "10"), g.Text(form.Content)),
				fieldError(form.FieldError),
				Label(For("keywords"), g.Text("Keywords (optional)")),
				Input(Type("text"), ID("keywords"), Name("keywords"), Value(form.Keywords)),
				Button(Type("submit"), Class("button primary"), g.If(form.Disabled, Disabled()), g.Text("Enhance")),
			),
		),
		result,
	)
}
