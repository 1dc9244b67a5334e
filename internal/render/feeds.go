package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/models"
)

// RSS generates the RSS 2.0 feed document for the published articles.
func RSS(site config.SiteConfig, articles []models.IndexEntry) string {
	siteURL := "https://" + site.Domain

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">` + "\n")
	b.WriteString("<channel>\n")
	fmt.Fprintf(&b, "<title><![CDATA[%s]]></title>\n", site.Name)
	fmt.Fprintf(&b, "<description><![CDATA[%s]]></description>\n", site.Description)
	fmt.Fprintf(&b, "<link>%s</link>\n", siteURL)
	fmt.Fprintf(&b, `<atom:link href="%s/rss.xml" rel="self" type="application/rss+xml" />`+"\n", siteURL)
	b.WriteString("<language>en-us</language>\n")
	fmt.Fprintf(&b, "<lastBuildDate>%s</lastBuildDate>\n", time.Now().UTC().Format(time.RFC1123))
	b.WriteString("<ttl>60</ttl>\n")

	for _, a := range articles {
		link := fmt.Sprintf("%s/article/%s", siteURL, EscapeXML(a.Permalink))
		b.WriteString("<item>\n")
		fmt.Fprintf(&b, "<title><![CDATA[%s]]></title>\n", a.Title)
		fmt.Fprintf(&b, "<description><![CDATA[%s]]></description>\n", a.Excerpt)
		fmt.Fprintf(&b, "<content:encoded><![CDATA[%s]]></content:encoded>\n", a.Excerpt)
		fmt.Fprintf(&b, "<link>%s</link>\n", link)
		fmt.Fprintf(&b, `<guid isPermaLink="true">%s</guid>`+"\n", link)
		fmt.Fprintf(&b, "<pubDate>%s</pubDate>\n", toRFC1123(a.CreateDate))
		fmt.Fprintf(&b, "<category><![CDATA[%s]]></category>\n", a.Label)
		fmt.Fprintf(&b, "<dc:creator><![CDATA[%s]]></dc:creator>\n", site.Name)
		if a.Img != "" {
			fmt.Fprintf(&b, `<enclosure url="%s" type="image/jpeg" />`+"\n", EscapeXML(a.Img))
		}
		b.WriteString("</item>\n")
	}

	b.WriteString("</channel>\n</rss>\n")
	return b.String()
}

// Sitemap generates the sitemap XML for the published articles.
func Sitemap(site config.SiteConfig, articles []models.IndexEntry) string {
	siteURL := "https://" + site.Domain

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:image="http://www.google.com/schemas/sitemap-image/1.1">` + "\n")
	b.WriteString("<url>\n")
	fmt.Fprintf(&b, "<loc>%s</loc>\n", siteURL)
	fmt.Fprintf(&b, "<lastmod>%s</lastmod>\n", time.Now().UTC().Format("2006-01-02"))
	b.WriteString("<changefreq>daily</changefreq>\n<priority>1.0</priority>\n</url>\n")

	for _, a := range articles {
		b.WriteString("<url>\n")
		fmt.Fprintf(&b, "<loc>%s/article/%s</loc>\n", siteURL, EscapeXML(a.Permalink))
		fmt.Fprintf(&b, "<lastmod>%s</lastmod>\n", toDateOnly(a.CreateDate))
		b.WriteString("<changefreq>monthly</changefreq>\n<priority>0.8</priority>\n")
		if a.Img != "" {
			b.WriteString("<image:image>\n")
			fmt.Fprintf(&b, "<image:loc>%s</image:loc>\n", EscapeXML(a.Img))
			fmt.Fprintf(&b, "<image:title>%s</image:title>\n", EscapeXML(a.Title))
			b.WriteString("</image:image>\n")
		}
		b.WriteString("</url>\n")
	}

	b.WriteString("</urlset>\n")
	return b.String()
}

// EscapeXML escapes the five XML special characters.
func EscapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

func toRFC1123(createDate string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, createDate); err == nil {
			return t.UTC().Format(time.RFC1123)
		}
	}
	return createDate
}

func toDateOnly(createDate string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, createDate); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return createDate
}
