package assist

import (
	"strings"

	"github.com/jonathan/cv-editor/internal/sanitize"
	"github.com/jonathan/cv-editor/internal/types"
)

// knownSkills maps normalized skill names to their category.
var knownSkills = map[string]types.Category{}

func init() {
	register := func(cat types.Category, names ...string) {
		for _, n := range names {
			knownSkills[sanitize.NormalizeKey(n)] = cat
		}
	}
	register(types.CategoryProgramming,
		"go", "golang", "python", "java", "javascript", "typescript", "rust", "c", "c++", "c#",
		"ruby", "kotlin", "swift", "php", "scala", "elixir", "haskell", "perl", "r", "bash",
		"shell", "dart", "lua", "objective-c", "clojure", "erlang", "f#", "julia", "zig")
	register(types.CategoryFrontend,
		"react", "react.js", "vue", "vue.js", "angular", "svelte", "next.js", "nuxt", "html",
		"css", "sass", "tailwind", "tailwind css", "redux", "webpack", "vite", "jquery",
		"bootstrap", "ember", "storybook")
	register(types.CategoryBackend,
		"node", "node.js", "express", "django", "flask", "fastapi", "spring", "spring boot",
		"rails", "ruby on rails", "laravel", "asp.net", ".net", "graphql", "rest", "grpc",
		"gin", "echo", "nestjs", "microservices", "kafka", "rabbitmq", "nats")
	register(types.CategoryDataML,
		"pandas", "numpy", "pytorch", "tensorflow", "keras", "scikit-learn", "spark",
		"machine learning", "deep learning", "nlp", "computer vision", "airflow", "dbt",
		"hadoop", "jupyter", "llm", "llms", "data analysis", "statistics", "tableau", "power bi")
	register(types.CategoryCloudDevOps,
		"aws", "gcp", "azure", "google cloud", "docker", "kubernetes", "k8s", "terraform",
		"ansible", "helm", "jenkins", "github actions", "gitlab ci", "circleci", "ci/cd",
		"prometheus", "grafana", "nginx", "linux", "serverless", "cloudformation", "argo cd")
	register(types.CategoryDatabases,
		"postgres", "postgresql", "mysql", "sqlite", "mongodb", "redis", "dynamodb",
		"cassandra", "elasticsearch", "oracle", "sql server", "mariadb", "sql", "bigquery",
		"snowflake", "neo4j", "cockroachdb", "firestore")
	register(types.CategoryTesting,
		"jest", "pytest", "cypress", "selenium", "junit", "mocha", "playwright", "testng",
		"unit testing", "integration testing", "tdd", "testify", "rspec", "vitest", "qa")
	register(types.CategoryTools,
		"git", "github", "gitlab", "jira", "confluence", "figma", "vim", "vs code", "postman",
		"slack", "notion", "intellij", "bitbucket", "excel", "trello")
	register(types.CategoryLanguages,
		"english", "spanish", "german", "french", "portuguese", "italian", "dutch", "mandarin",
		"chinese", "japanese", "korean", "hindi", "arabic", "russian", "polish", "swedish")
}

// keywordHints classify skills by a contained word when there is no exact match.
var keywordHints = []struct {
	word string
	cat  types.Category
}{
	{"sql", types.CategoryDatabases},
	{"db", types.CategoryDatabases},
	{"database", types.CategoryDatabases},
	{"test", types.CategoryTesting},
	{"testing", types.CategoryTesting},
	{"cloud", types.CategoryCloudDevOps},
	{"devops", types.CategoryCloudDevOps},
	{"ml", types.CategoryDataML},
	{"data", types.CategoryDataML},
	{"learning", types.CategoryDataML},
	{"frontend", types.CategoryFrontend},
	{"ui", types.CategoryFrontend},
	{"backend", types.CategoryBackend},
	{"api", types.CategoryBackend},
	{"apis", types.CategoryBackend},
	{"native", types.CategoryLanguages},
	{"fluent", types.CategoryLanguages},
}

// ClassifySkill returns the heuristic category for one skill. Unknown skills land in Other.
func ClassifySkill(skill string) types.Category {
	key := sanitize.NormalizeKey(skill)
	if cat, ok := knownSkills[key]; ok {
		return cat
	}
	// "Go (Golang)" or "English (C1)"
	if i := strings.IndexAny(key, "(["); i > 0 {
		if cat, ok := knownSkills[strings.TrimSpace(key[:i])]; ok {
			return cat
		}
	}
	for _, word := range strings.FieldsFunc(key, func(r rune) bool {
		return r == ' ' || r == '/' || r == '-' || r == ',' || r == '(' || r == ')'
	}) {
		for _, hint := range keywordHints {
			if word == hint.word {
				return hint.cat
			}
		}
	}
	return types.CategoryOther
}

// HeuristicGroups groups skills locally, without any backend.
func HeuristicGroups(skills []string) types.SkillGroups {
	groups := make(types.SkillGroups)
	for _, s := range sanitize.DedupeFold(skills) {
		cat := ClassifySkill(s)
		groups[cat] = append(groups[cat], s)
	}
	return groups.Normalize()
}
