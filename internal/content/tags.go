package content

import "strings"

// DefaultFeed is the feed id used for anonymous visitors.
const DefaultFeed = "default"

var roadmapTags = map[string][]string{
	// Career roadmaps
	"full-stack-developer":      {"fullstack", "webdev", "javascript", "react", "nodejs", "html", "css", "typescript", "api", "sql", "nosql"},
	"data-scientist":            {"datascience", "python", "machinelearning", "dataanalysis", "dataengineering", "statistics", "visualization"},
	"artificial-intelligence":   {"ai", "machinelearning", "deeplearning", "neuralnetworks", "computer-vision"},
	"cybersecurity":             {"security", "cybersecurity", "infosec", "hacking", "encryption", "networksecurity", "penetrationtesting"},
	"cloud-computing":           {"cloud", "aws", "azure", "devops", "serverless", "docker"},
	"android-developer":         {"android", "kotlin", "java", "mobiledev", "google"},
	"blockchain-developer":      {"blockchain", "web3", "ethereum", "crypto", "smartcontracts", "solidity"},
	"game-development":          {"gamedev", "unity", "unrealengine", "gamedevelopment"},
	"mlops":                     {"mlops", "machinelearning", "devops", "datapipeline", "mlengineering", "cloud"},
	"robotics":                  {"robotics", "ros", "iot", "automation", "embedded"},
	"embedded-iot-developer":    {"iot", "embedded", "arduino", "raspberrypi", "sensors"},
	"iot-application-developer": {"iot", "internetofthings", "embedded", "mqtt", "sensors"},
	"data-analyst":              {"dataanalysis", "sql", "visualization", "tableau", "excel"},
	"ios-developer":             {"ios", "swift", "swiftui", "mobiledev", "apple"},
	"frontend-developer":        {"frontend", "react", "javascript", "css", "webdev"},
	"devops-engineer":           {"devops", "docker", "kubernetes", "cicd", "automation"},
	"ui-ux-design":              {"uidesign", "uxdesign", "webdesign", "figma", "design"},
	"backend-developer":         {"backend", "api", "database", "nodejs", "serverside"},

	// Skill roadmaps
	"javascript":      {"javascript", "webdev", "es6", "nodejs", "frontend"},
	"python":          {"python", "django", "flask", "datascience", "automation"},
	"react":           {"react", "javascript", "frontend", "webdev", "hooks"},
	"nodejs":          {"nodejs", "javascript", "express", "backend", "api"},
	"sql":             {"sql", "database", "mysql", "postgresql", "dataengineering"},
	"docker":          {"docker", "containerization", "devops", "kubernetes", "microservices"},
	"kubernetes":      {"kubernetes", "k8s", "devops", "containerization", "cloudnative"},
	"tensorflow":      {"tensorflow", "machinelearning", "deeplearning", "ai", "neuralnetworks"},
	"gitandgithub":    {"git", "github", "versioncontrol", "opensource", "collaboration"},
	"aws":             {"aws", "cloud", "serverless", "s3", "ec2"},
	"microsoft-azure": {"azure", "cloud", "microsoftcloud", "azurefunctions", "devops"},
	"linux":           {"linux", "bash", "ubuntu", "sysadmin", "commandline"},
	"java":            {"java", "spring", "enterprise", "jvm", "backend"},
	"cpp":             {"cpp", "c++", "gamedev", "systems", "performance"},
	"rust":            {"rust", "systems", "webassembly", "performance", "safety"},
	"golang":          {"golang", "go", "backend", "microservices", "concurrency"},
	"ruby":            {"ruby", "rails", "rubyonrails", "backend", "webdev"},
	"terraform":       {"terraform", "iac", "devops", "cloudinfrastructure", "automation"},
	"kotlin":          {"kotlin", "android", "jvm", "mobiledev", "java"},
	"php":             {"php", "laravel", "wordpress", "backend", "webdev"},
	"redis":           {"redis", "database", "caching", "nosql", "performance"},
	"typescript":      {"typescript", "javascript", "frontend", "angular", "typesafety"},
	"angular":         {"angular", "typescript", "frontend", "webdev", "spa"},
	"vuejs":           {"vuejs", "vue", "javascript", "frontend", "webdev"},
	"flutter":         {"flutter", "dart", "mobiledev", "crossplatform", "ui"},
	"springboot":      {"springboot", "java", "microservices", "backend", "api"},
	"mongodb":         {"mongodb", "nosql", "database", "backend", "json"},
	"graphql":         {"graphql", "api", "apollo", "rest", "webdev"},
	"react-native":    {"reactnative", "react", "mobiledev", "crossplatform", "javascript"},
	"apache-hadoop":   {"hadoop", "bigdata", "datascience", "distributed", "mapreduce"},
	"jenkins":         {"jenkins", "cicd", "devops", "automation", "pipeline"},
	"pandas":          {"pandas", "python", "dataanalysis", "datascience", "dataframe"},
	"clang":           {"c", "programming", "systems", "lowlevel", "embedded"},
	"scala":           {"scala", "jvm", "functional", "spark", "bigdata"},
	"swift":           {"swift", "ios", "mobiledev", "apple", "swiftui"},
	"dsa":             {"algorithms", "datastructures", "programming", "leetcode", "computerscience"},

	DefaultFeed: {"programming", "webdev", "technology", "javascript", "python", "beginners", "tutorial", "productivity", "career"},
}

// TagsFor returns the tags of a roadmap category. Lookup is case-insensitive.
func TagsFor(roadmapID string) ([]string, bool) {
	tags, ok := roadmapTags[strings.ToLower(roadmapID)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), tags...), true
}
