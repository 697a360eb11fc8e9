package parsing

import "strings"

// maxExtractedSkills caps how many skills one listing can carry.
const maxExtractedSkills = 10

// skillVocabulary lists the skill keywords recognized in listing text,
// grouped roughly by category. Matching is case-insensitive substring
// matching against the listing text; the canonical casing below is what
// gets stored.
var skillVocabulary = []string{
	// Programming languages
	"Python", "JavaScript", "Java", "C++", "C#", "Go", "Rust", "Swift", "Kotlin",
	"PHP", "Ruby", "TypeScript", "Scala", "R", "MATLAB", "Perl", "Haskell",

	// Web technologies
	"React", "Angular", "Vue.js", "Node.js", "Express", "Django", "Flask",
	"Spring", "Laravel", "Rails", "ASP.NET", "jQuery", "Bootstrap", "Tailwind",

	// Databases
	"SQL", "MySQL", "PostgreSQL", "MongoDB", "Redis", "Elasticsearch", "Cassandra",
	"DynamoDB", "SQLite", "Oracle", "SQL Server",

	// Cloud and DevOps
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Jenkins", "GitLab CI",
	"GitHub Actions", "Terraform", "Ansible", "Chef", "Puppet",

	// Data and AI
	"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch", "Scikit-learn",
	"Pandas", "NumPy", "Data Science", "Data Analysis", "Statistics",

	// Mobile
	"iOS", "Android", "React Native", "Flutter", "Xamarin", "Ionic",

	// Other
	"Git", "Linux", "Windows", "Agile", "Scrum", "DevOps", "Microservices",
	"REST API", "GraphQL", "WebSocket", "OAuth", "JWT",
}

// vocabularyIndex maps lowercased vocabulary entries to canonical casing.
var vocabularyIndex = func() map[string]string {
	idx := make(map[string]string, len(skillVocabulary))
	for _, s := range skillVocabulary {
		idx[strings.ToLower(s)] = s
	}
	return idx
}()

// ExtractSkills scans text for known skill keywords and returns the
// canonical names found, in vocabulary order, capped at maxExtractedSkills.
func ExtractSkills(text string) []string {
	if text == "" {
		return nil
	}

	textLower := strings.ToLower(text)
	var found []string
	for _, skill := range skillVocabulary {
		if strings.Contains(textLower, strings.ToLower(skill)) {
			found = append(found, skill)
			if len(found) == maxExtractedSkills {
				break
			}
		}
	}
	return found
}
