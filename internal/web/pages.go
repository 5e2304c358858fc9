package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/resumeai/enhancer/internal/wizard"
)

//go:embed templates/*.html
var templateFiles embed.FS

const siteName = "ResumeAI Enhancer"

type navLink struct {
	Name string
	Href string
}

var siteNav = []navLink{
	{Name: "Home", Href: "/"},
	{Name: "About", Href: "/about"},
	{Name: "Features", Href: "/features"},
	{Name: "Pricing", Href: "/pricing"},
}

// navExcept lists every site page except the current one.
func navExcept(href string) []navLink {
	links := make([]navLink, 0, len(siteNav)-1)
	for _, l := range siteNav {
		if l.Href != href {
			links = append(links, l)
		}
	}
	return links
}

type card struct {
	Title       string
	Description string
}

type plan struct {
	Name     string
	Price    string
	Features []string
	Popular  bool
	Action   string
}

// infoPage is the data behind the about and features pages.
type infoPage struct {
	Title   string
	Nav     []navLink
	Heading string
	Intro   string
	Cards   []card
	CTA     navLink
	Footer  string
}

type pricingPage struct {
	Title   string
	Nav     []navLink
	Heading string
	Intro   string
	Plans   []plan
	Help    string
	Footer  string
}

var aboutPage = infoPage{
	Title:   "About | " + siteName,
	Nav:     navExcept("/about"),
	Heading: "About ResumeAI Enhancer",
	Intro:   "We're revolutionizing the job application process with cutting-edge AI technology.",
	Cards: []card{
		{"Supercharge Your Career", "Our AI-powered tools give you the edge in today's competitive job market."},
		{"Advanced AI Analysis", "We use state-of-the-art machine learning to analyze your resume and job descriptions."},
		{"Intelligent Insights", "Get personalized recommendations to improve your chances of landing your dream job."},
		{"Tailored for Professionals", "Whether you're a fresh graduate or a seasoned pro, we've got you covered."},
	},
	CTA:    navLink{Name: "Start Enhancing Your Resume Now!", Href: "/"},
	Footer: "© 2024 ResumeAI Enhancer. Empowering careers with AI magic. ✨",
}

var featuresPage = infoPage{
	Title:   "Features | " + siteName,
	Nav:     navExcept("/features"),
	Heading: "Powerful Features",
	Intro:   "Discover how ResumeAI Enhancer can transform your job application process.",
	Cards: []card{
		{"Smart Resume Parsing", "Our AI quickly extracts and analyzes key information from your resume."},
		{"Job Match Analysis", "Get a detailed breakdown of how well your skills match the job requirements."},
		{"AI-Powered Enhancements", "Receive tailored suggestions to improve your resume and increase your chances."},
		{"ATS-Friendly Formatting", "Ensure your resume passes through Applicant Tracking Systems with ease."},
		{"24/7 AI Assistant", "Get instant answers to your resume and job application questions anytime."},
		{"Continuous Learning", "Our AI constantly improves, learning from the latest trends in hiring."},
	},
	CTA:    navLink{Name: "Unlock All Features Now!", Href: "/pricing"},
	Footer: "© 2024 ResumeAI Enhancer. Your career, supercharged. 🚀",
}

var plansPage = pricingPage{
	Title:   "Pricing | " + siteName,
	Nav:     navExcept("/pricing"),
	Heading: "Choose Your Plan",
	Intro:   "Invest in your career with our powerful AI-driven tools.",
	Plans: []plan{
		{
			Name:  "Basic",
			Price: "Free",
			Features: []string{
				"1 Resume Analysis",
				"Basic Job Match Score",
				"Limited Enhancement Suggestions",
			},
			Action: "Get Started",
		},
		{
			Name:  "Pro",
			Price: "$9.99/month",
			Features: []string{
				"Unlimited Resume Analyses",
				"Advanced Job Match Analysis",
				"Comprehensive Enhancement Suggestions",
				"ATS-Friendly Formatting",
				"24/7 AI Assistant Access",
			},
			Popular: true,
			Action:  "Upgrade Now",
		},
	},
	Help:   "Not sure which plan is right for you?",
	Footer: "© 2024 ResumeAI Enhancer. Invest in yourself, invest in your future. 💼",
}

const indexFooter = "© 2024 ResumeAI Enhancer. Use responsibly (or not, we won't tell). 🤫"

var wizardSteps = []string{"Upload Resume", "AI Analysis", "Get Insights", "Enhance Resume"}

type stepMarker struct {
	Title   string
	Reached bool
}

// indexPage is the data behind the wizard page.
type indexPage struct {
	Title       string
	Nav         []navLink
	Footer      string
	State       wizard.State
	Steps       []stepMarker
	SubmitLabel string
	Results     *wizard.ResultsView
}

func (s *Server) indexData(st wizard.State) indexPage {
	steps := make([]stepMarker, len(wizardSteps))
	for i, title := range wizardSteps {
		steps[i] = stepMarker{Title: title, Reached: int(st.Step) > i}
	}
	p := indexPage{
		Title:       siteName,
		Nav:         navExcept("/"),
		Footer:      indexFooter,
		State:       st,
		Steps:       steps,
		SubmitLabel: st.SubmitLabel(),
	}
	if st.Result != nil {
		v := s.presenter.Preview(*st.Result)
		p.Results = &v
	}
	return p
}

// pages holds one parsed template set per page, each sharing the layout.
type pages struct {
	index   *template.Template
	info    *template.Template
	pricing *template.Template
}

func mustParsePages() *pages {
	parse := func(name string) *template.Template {
		return template.Must(template.ParseFS(templateFiles, "templates/layout.html", "templates/"+name))
	}
	return &pages{
		index:   parse("index.html"),
		info:    parse("info.html"),
		pricing: parse("pricing.html"),
	}
}

// render executes t into a buffer first so template errors never produce a
// half-written page.
func (s *Server) render(w http.ResponseWriter, status int, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("rendering page", "error", err)
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, st wizard.State) {
	s.render(w, status, s.pages.index, s.indexData(st))
}

func (s *Server) handleAbout(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, s.pages.info, aboutPage)
}

func (s *Server) handleFeatures(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, s.pages.info, featuresPage)
}

func (s *Server) handlePricing(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, s.pages.pricing, plansPage)
}
