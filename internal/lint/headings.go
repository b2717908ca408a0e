package lint

import "strings"

// knownHeadings holds section headings ATS parsers map reliably, by language
var knownHeadings = map[string][]string{
	"en": {
		"Profile", "Summary", "Professional Summary", "Career Summary", "Personal Statement",
		"Objective", "Experience", "Work Experience", "Professional Experience", "Employment History",
		"Education", "Skills", "Technical Skills", "Projects", "Certifications", "Licenses & Certifications",
		"Publications", "Patents", "Languages", "Awards", "Volunteering", "Volunteer Experience",
		"Interests", "References",
	},
	"de": {
		"Profil", "Kurzprofil", "Berufserfahrung", "Berufliche Erfahrung", "Ausbildung", "Bildung",
		"Kenntnisse", "Fähigkeiten", "Projekte", "Zertifikate", "Zertifizierungen",
		"Publikationen", "Veröffentlichungen", "Patente", "Sprachen", "Auszeichnungen",
	},
	"fr": {
		"Profil", "Résumé", "Expérience", "Expérience professionnelle", "Formation", "Éducation",
		"Compétences", "Projets", "Certifications", "Publications", "Brevets", "Langues",
	},
	"es": {
		"Perfil", "Resumen", "Experiencia", "Experiencia profesional", "Educación", "Formación",
		"Habilidades", "Competencias", "Proyectos", "Certificaciones", "Publicaciones", "Patentes",
		"Idiomas",
	},
	"pt": {
		"Perfil", "Resumo", "Experiência", "Experiência profissional", "Formação", "Educação",
		"Competências", "Habilidades", "Projetos", "Certificações", "Publicações", "Patentes",
		"Idiomas",
	},
	"nl": {
		"Profiel", "Werkervaring", "Ervaring", "Opleiding", "Opleidingen", "Vaardigheden",
		"Projecten", "Certificaten", "Certificeringen", "Publicaties", "Octrooien", "Patenten", "Talen",
	},
	"it": {
		"Profilo", "Esperienza", "Esperienza professionale", "Esperienze lavorative", "Istruzione",
		"Formazione", "Competenze", "Progetti", "Certificazioni", "Pubblicazioni", "Brevetti", "Lingue",
	},
}

var headingIndex = buildHeadingIndex()

func buildHeadingIndex() map[string]bool {
	index := make(map[string]bool)
	for _, headings := range knownHeadings {
		for _, h := range headings {
			index[headingKey(h)] = true
		}
	}
	return index
}

func headingKey(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimRight(h, ":")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// KnownHeading reports whether a heading is in the vocabulary, ignoring case and a trailing colon
func KnownHeading(h string) bool {
	return headingIndex[headingKey(h)]
}
