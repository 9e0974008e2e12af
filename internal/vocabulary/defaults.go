package vocabulary

var defaultSkills = []string{
	"python", "java", "c++", "c", "javascript", "typescript", "html", "css", "php",
	"sql", "mysql", "postgresql", "mongodb", "oracle", "machine learning", "deep learning", "nlp",
	"pandas", "numpy", "scipy", "matplotlib", "seaborn", "plotly",
	"tensorflow", "keras", "pytorch", "scikit-learn", "mlflow",
	"flask", "django", "fastapi", "spring", "express", "node.js",
	"aws", "azure", "gcp", "docker", "kubernetes", "linux", "networking", "git", "ci/cd", "jenkins",
	"agile", "scrum", "jira", "project management", "communication", "teamwork",
	"problem solving", "leadership", "time management", "adaptability", "critical thinking",
}

var defaultJobTitles = []string{
	"data scientist", "data analyst", "machine learning engineer",
	"software developer", "software engineer", "backend developer", "frontend developer",
	"full stack developer", "web developer", "cloud engineer", "devops engineer",
	"cybersecurity analyst", "security engineer", "business analyst", "product manager",
	"project manager", "database administrator", "network engineer",
	"test engineer", "automation tester", "intern", "trainee", "technical lead", "solution architect",
}

var defaultEducation = []string{
	"bca", "mca", "b.tech", "m.tech", "bachelor", "master",
	"bsc", "msc", "phd", "mba", "computer science",
	"information technology", "electronics", "mechanical", "civil", "engineering",
	"science", "arts", "commerce", "statistics", "mathematics", "ai", "ml", "data science",
}

var defaultLanguages = []string{
	"english", "hindi", "french", "german", "spanish", "tamil", "telugu", "marathi", "punjabi",
	"bengali", "gujarati", "malayalam", "kannada", "urdu", "japanese", "chinese", "korean", "russian", "portuguese",
}
