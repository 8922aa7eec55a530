package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ixink/uiu-student-bot/internal/record"
)

func fromHTML(in Input, content []byte, log *zap.Logger) []record.Record {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		log.Warn("parsing html failed",
			zap.String("source", in.Source),
			zap.Error(err),
		)
		return nil
	}

	switch in.Kind {
	case record.KindCalendar:
		return extractCalendar(doc)
	case record.KindResources:
		return extractResources(doc, in.URL)
	case record.KindTrending:
		return extractTrending(doc)
	case record.KindQuestions:
		return extractQuestions(doc, in.URL)
	case record.KindJobs:
		return extractJobs(doc, in.URL)
	case record.KindFaculty:
		return extractFaculty(doc, in.URL)
	case record.KindNotices:
		return extractNotices(doc)
	case record.KindRoadmaps:
		return extractRoadmap(doc, in.URL)
	default:
		log.Warn("no html extractor for kind", zap.String("kind", string(in.Kind)))
		return nil
	}
}

// text returns the first non-empty trimmed text matched by any of the
// comma-separated selectors, or def.
func text(s *goquery.Selection, selectors, def string) string {
	v := clean(s.Find(selectors).First().Text())
	if v == "" {
		return def
	}
	return v
}

// href resolves the first matched link against the page URL. Relative and
// protocol-less hrefs are common on the scraped boards.
func href(s *goquery.Selection, selectors, pageURL string) string {
	raw, ok := s.Find(selectors).First().Attr("href")
	if !ok || raw == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return raw
	}
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

func extractCalendar(doc *goquery.Document) []record.Record {
	var out []record.Record
	doc.Find("div.event-item, li.event").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := text(s, "h3, .event-title", "")
		if title == "" {
			return true // skip items without a headline
		}
		out = append(out, record.New(record.KindCalendar,
			record.F("title", title),
			record.F("date", text(s, "time, .event-date", "No date")),
			record.F("detail", truncate(text(s, "p, .event-details", "No details"), 200)),
		))
		return len(out) < maxItems
	})
	return out
}

func extractResources(doc *goquery.Document, pageURL string) []record.Record {
	platform := hostLabel(pageURL)
	var out []record.Record
	doc.Find("div.course-item, li.course").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := text(s, "h2, .course-title", "")
		if title == "" {
			return true
		}
		out = append(out, record.New(record.KindResources,
			record.F("title", title),
			record.F("platform", platform),
			record.F("link", href(s, "a", pageURL)),
		))
		return len(out) < maxItems
	})
	return out
}

func extractTrending(doc *goquery.Document) []record.Record {
	var out []record.Record
	doc.Find("article.Box-row").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := clean(s.Find("h2 a, h1 a").First().Text())
		if name == "" {
			return true
		}
		out = append(out, record.New(record.KindTrending,
			record.F("title", name),
			record.F("language", text(s, `span[itemprop="programmingLanguage"]`, "Unknown")),
			record.F("stars", text(s, `a[href$="/stargazers"]`, "0")),
			record.F("detail", truncate(text(s, "p", "No description"), 200)),
		))
		return len(out) < maxItems
	})
	return out
}

func extractQuestions(doc *goquery.Document, pageURL string) []record.Record {
	var out []record.Record
	doc.Find("div.question-summary, div.s-post-summary").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := text(s, "h3 a, .s-post-summary--content-title a", "")
		if title == "" {
			return true
		}
		var tags []string
		s.Find("div.tags a, .s-post-summary--meta-tags a").Each(func(_ int, tag *goquery.Selection) {
			if t := clean(tag.Text()); t != "" {
				tags = append(tags, t)
			}
		})
		out = append(out, record.New(record.KindQuestions,
			record.F("title", title),
			record.F("tags", strings.Join(tags, ", ")),
			record.F("link", href(s, "h3 a, .s-post-summary--content-title a", pageURL)),
		))
		return len(out) < maxItems
	})
	return out
}

// extractJobs dispatches per board: each site's listing markup differs, so
// the selectors do too. Unknown boards get a generic listing heuristic.
func extractJobs(doc *goquery.Document, pageURL string) []record.Record {
	host := strings.ToLower(hostOf(pageURL))
	switch {
	case strings.Contains(host, "internshala"):
		return jobItems(doc, pageURL, "div.internship_meta",
			"h3", "a.company_name", "div.location", "a.view_detail_button")
	case strings.Contains(host, "bdjobs"):
		return jobItems(doc, pageURL, "div.job-list-item",
			"h2", "span.company", "span.location", "a")
	case strings.Contains(host, "linkedin"):
		return jobItems(doc, pageURL, "div.job-card",
			"h3", "h4", "span.job-location", "a")
	case strings.Contains(host, "weworkremotely"):
		return jobItems(doc, pageURL, "li.feature",
			"span.title", "span.company", "", "a")
	default:
		return jobItems(doc, pageURL, "div.job-list-item, li.job, div.job-card",
			"h2, h3, .job-title", ".company, .company-name", ".location", "a")
	}
}

func jobItems(doc *goquery.Document, pageURL, itemSel, titleSel, companySel, locationSel, linkSel string) []record.Record {
	var out []record.Record
	doc.Find(itemSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := text(s, titleSel, "")
		if title == "" {
			return true
		}
		location := "Remote"
		if locationSel != "" {
			location = text(s, locationSel, "Remote")
		}
		out = append(out, record.New(record.KindJobs,
			record.F("title", title),
			record.F("company", text(s, companySel, "Unknown")),
			record.F("location", location),
			record.F("link", href(s, linkSel, pageURL)),
		))
		return len(out) < maxItems
	})
	return out
}

func extractFaculty(doc *goquery.Document, pageURL string) []record.Record {
	department := departmentFor(pageURL)
	var out []record.Record
	doc.Find("div.faculty-member, tr.member, div.staff-card, li.faculty").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := text(s, "h3, td.name, .faculty-name", "")
		if name == "" {
			return true
		}
		out = append(out, record.New(record.KindFaculty,
			record.F("title", name),
			record.F("designation", text(s, "p.designation, td.designation, .faculty-title", "N/A")),
			record.F("department", department),
			record.F("expertise", text(s, "p.expertise, td.expertise, .faculty-expertise", "N/A")),
			record.F("email", text(s, "a.email, td.email, .faculty-email", "N/A")),
			record.F("phone", text(s, "span.phone, td.phone, .faculty-phone", "N/A")),
		))
		return len(out) < maxItems
	})
	return out
}

func extractNotices(doc *goquery.Document) []record.Record {
	var out []record.Record
	doc.Find("div.news-section article, article.notice").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := text(s, "h2, h3", "")
		if title == "" {
			return true
		}
		out = append(out, record.New(record.KindNotices,
			record.F("title", title),
			record.F("date", text(s, "time, .notice-date", "No date")),
			record.F("detail", truncate(text(s, "p", "No details"), 200)),
		))
		return len(out) < maxItems
	})
	return out
}

// extractRoadmap emits one record per difficulty level found on the page.
func extractRoadmap(doc *goquery.Document, pageURL string) []record.Record {
	topic := strings.Trim(pathTail(pageURL), "/")
	if topic == "" {
		topic = "roadmap"
	}
	var out []record.Record
	for _, level := range []string{"beginner", "intermediate", "advanced"} {
		section := doc.Find(`div[data-level="` + level + `"]`)
		if section.Length() == 0 {
			section = doc.Find("div.roadmap-section")
		}
		if section.Length() == 0 {
			continue
		}
		var steps []string
		section.Find("ul.steps li").Each(func(_ int, s *goquery.Selection) {
			if step := clean(s.Text()); step != "" {
				steps = append(steps, step)
			}
		})
		if len(steps) == 0 {
			continue
		}
		title := text(section, "h2", capitalize(level)+" "+capitalize(topic)+" Roadmap")
		out = append(out, record.New(record.KindRoadmaps,
			record.F("title", title),
			record.F("level", level),
			record.F("steps", truncate(strings.Join(steps, "; "), 300)),
		))
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func hostLabel(pageURL string) string {
	return strings.TrimPrefix(hostOf(pageURL), "www.")
}

func pathTail(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[len(parts)-1]
}

// departmentFor maps a faculty directory host to its department name.
func departmentFor(pageURL string) string {
	host := hostOf(pageURL)
	switch {
	case strings.Contains(host, "cse.uiu.ac.bd"):
		return "Computer Science and Engineering"
	case strings.Contains(host, "eee.uiu.ac.bd"):
		return "Electrical and Electronic Engineering"
	case strings.Contains(host, "ce.uiu.ac.bd"):
		return "Civil Engineering"
	case strings.Contains(host, "sobe.uiu.ac.bd"):
		return "Business Administration"
	case strings.Contains(host, "pharmacy.uiu.ac.bd"):
		return "Pharmacy"
	case strings.Contains(host, "ins.uiu.ac.bd"):
		return "Institute of Natural Sciences"
	default:
		return "General"
	}
}
