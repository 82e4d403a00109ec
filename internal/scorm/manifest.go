package scorm

import (
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/courseforge/courseforge/internal/course"
)

// Static runtime files every package ships alongside the generated data
// blob. The manifest must enumerate exactly these plus the declared assets.
var runtimeFiles = []string{
	"index.html",
	"scorm_wrapper.js",
	"course_data.js",
	"styles.css",
}

// ManifestItem is one organization entry (slide) in the manifest.
type ManifestItem struct {
	Identifier string
	Title      string
}

// Manifest declares the package resource list and SCORM metadata. Files
// lists every file actually emitted into the package, with no dangling
// references.
type Manifest struct {
	Identifier    string
	SchemaVersion string
	CourseID      string
	Title         string
	Description   string
	Author        string
	Version       string
	Language      string
	Items         []ManifestItem
	Files         []string
}

func buildManifest(c *course.Course, identifier string) Manifest {
	m := Manifest{
		Identifier:    identifier,
		SchemaVersion: "1.2",
		CourseID:      c.CourseID,
		Title:         c.Title,
		Description:   c.Description,
		Author:        c.Author,
		Version:       c.Version,
		Language:      c.Language,
		Files:         append([]string{}, runtimeFiles...),
	}

	for i, tpl := range c.SortedTemplates() {
		m.Items = append(m.Items, ManifestItem{
			Identifier: fmt.Sprintf("item_%s_%d", tpl.ID, i),
			Title:      tpl.Title,
		})
	}
	for _, asset := range c.Assets {
		m.Files = append(m.Files, "assets/"+path.Base(asset.Path))
	}
	return m
}

var manifestTemplate = template.Must(template.New("imsmanifest").Funcs(template.FuncMap{
	"xml": xmlEscape,
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<manifest identifier="{{xml .Identifier}}" version="1"
          xmlns="http://www.imsproject.org/xsd/imscp_rootv1p1p2"
          xmlns:adlcp="http://www.adlnet.org/xsd/adlcp_rootv1p2"
          xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
          xsi:schemaLocation="http://www.imsproject.org/xsd/imscp_rootv1p1p2 imscp_rootv1p1p2.xsd
                              http://www.imsglobal.org/xsd/imsmd_rootv1p2p1 imsmd_rootv1p2p1.xsd
                              http://www.adlnet.org/xsd/adlcp_rootv1p2 adlcp_rootv1p2.xsd">

    <metadata>
        <schema>ADL SCORM</schema>
        <schemaversion>{{.SchemaVersion}}</schemaversion>
        <lom xmlns="http://www.imsglobal.org/xsd/imsmd_rootv1p2p1">
            <general>
                <identifier>
                    <catalog>URI</catalog>
                    <entry>{{xml .CourseID}}</entry>
                </identifier>
                <title>
                    <langstring xml:lang="{{xml .Language}}">{{xml .Title}}</langstring>
                </title>
                <description>
                    <langstring xml:lang="{{xml .Language}}">{{xml .Description}}</langstring>
                </description>
                <language>{{xml .Language}}</language>
            </general>
            <lifeCycle>
                <version>
                    <langstring xml:lang="{{xml .Language}}">{{xml .Version}}</langstring>
                </version>
                <contribute>
                    <role>
                        <source>LOMv1.0</source>
                        <value>Author</value>
                    </role>
                    <entity>{{xml .Author}}</entity>
                </contribute>
            </lifeCycle>
        </lom>
    </metadata>

    <organizations default="default_org">
        <organization identifier="default_org">
            <title>{{xml .Title}}</title>
{{- range .Items}}
            <item identifier="{{xml .Identifier}}" identifierref="resource_1" isvisible="true">
                <title>{{xml .Title}}</title>
            </item>
{{- end}}
        </organization>
    </organizations>

    <resources>
        <resource identifier="resource_1" type="webcontent" adlcp:scormtype="sco" href="index.html">
{{- range .Files}}
            <file href="{{xml .}}"/>
{{- end}}
        </resource>
    </resources>

</manifest>
`))

// XML renders the manifest as imsmanifest.xml content.
func (m Manifest) XML() (string, error) {
	var b strings.Builder
	if err := manifestTemplate.Execute(&b, m); err != nil {
		return "", fmt.Errorf("rendering manifest: %w", err)
	}
	return b.String(), nil
}

func xmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	)
	return r.Replace(s)
}
