package classify

import (
	"regexp"

	"jobsonar/pkg/models"
)

// Vocabulary of phrases whose presence marks a job posting. Matching is
// case-insensitive substring containment; each entry counts once.
var jobKeywords = []string{
	// Strong indicators
	"hiring",
	"vacancy",
	"job opening",
	"position available",
	"we're looking for",
	"we are looking for",
	"join our team",
	"apply now",
	"send your cv",
	"send cv",
	"submit resume",
	"open position",
	"job opportunity",
	"career opportunity",
	"open role",
	// Role-related
	"developer",
	"engineer",
	"designer",
	"analyst",
	"manager",
	"coordinator",
	"specialist",
	"consultant",
	"architect",
	"researcher",
	"scientist",
	"trader",
	"quant",
	// Requirements section
	"requirements",
	"qualifications",
	"experience required",
	"must have",
	"skills required",
	"what we expect",
	"what you'll need",
	"responsibilities",
	"about the role",
	"role overview",
	"job description",
	"what you'll do",
	"your responsibilities",
	// Employment terms
	"full-time",
	"fulltime",
	"part-time",
	"parttime",
	"contract",
	"freelance",
	"remote",
	"hybrid",
	"on-site",
	"onsite",
	"permanent",
	// Compensation
	"salary",
	"compensation",
	"benefits",
	"competitive pay",
	"equity",
	"stock options",
	// Application
	"how to apply",
	"to apply",
	"apply for this",
	"application",
	"interview",
	"candidate",
	"submit your",
	"apply here",
	// Web3/Crypto specific
	"web3",
	"blockchain",
	"defi",
	"crypto",
}

type seniorityPattern struct {
	level   models.Seniority
	pattern *regexp.Regexp
}

// Ordered from most senior to most junior so "Senior Engineering Manager"
// resolves to the higher level.
var seniorityPatterns = []seniorityPattern{
	{models.SeniorityExecutive, regexp.MustCompile(`\b(cto|ceo|cfo|coo|c-level|chief)\b`)},
	{models.SeniorityVP, regexp.MustCompile(`\b(vp|vice president|head of)\b`)},
	{models.SeniorityDirector, regexp.MustCompile(`\b(director)\b`)},
	{models.SeniorityPrincipal, regexp.MustCompile(`\b(principal|staff engineer|staff)\b`)},
	{models.SeniorityManager, regexp.MustCompile(`\b(manager|engineering manager)\b`)},
	{models.SeniorityLead, regexp.MustCompile(`\b(lead|team lead|tech lead)\b`)},
	{models.SenioritySenior, regexp.MustCompile(`\b(senior|sr\.?)\b`)},
	{models.SeniorityMid, regexp.MustCompile(`\b(mid[- ]?level|intermediate|regular)\b`)},
	{models.SeniorityJunior, regexp.MustCompile(`\b(junior|jr\.?|entry[- ]level|associate)\b`)},
	{models.SeniorityIntern, regexp.MustCompile(`\b(intern|internship|trainee|apprentice)\b`)},
}

// Remote indicators, strongest phrasing first
var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(fully[- ]?remote|100%[- ]?remote|remote[- ]?only)\b`),
	regexp.MustCompile(`\b(remote[- ]?first|remote[- ]?friendly)\b`),
	regexp.MustCompile(`\b(work[- ]?from[- ]?home|wfh)\b`),
	regexp.MustCompile(`\b(remote|distributed)\b`),
}

var onsitePattern = regexp.MustCompile(`\b(on[- ]?site[- ]?only|office[- ]?based|in[- ]?office)\b`)

var salaryPatterns = []*regexp.Regexp{
	// Currency amounts
	regexp.MustCompile(`(?i)[$€£]\s*\d+[,.]?\d*\s*[kK]?\s*[-–]\s*[$€£]?\s*\d+[,.]?\d*\s*[kK]?`),
	regexp.MustCompile(`(?i)\d+[,.]?\d*\s*[kK]?\s*[-–]\s*\d+[,.]?\d*\s*[kK]?\s*[$€£]`),
	regexp.MustCompile(`(?i)(salary|compensation|pay)[:\s]+[$€£]?\s*\d+[,.]?\d*\s*[kK]?`),
	// Range patterns
	regexp.MustCompile(`(?i)\d+[,.]?\d*\s*[-–]\s*\d+[,.]?\d*\s*(usd|eur|gbp|per year|annually|per month|monthly)`),
}

var roleTitlePatterns = []*regexp.Regexp{
	// "Looking for a Senior Python Developer"
	regexp.MustCompile(`looking for (?:a |an )?([A-Z][A-Za-z/\-\s]+(?:Developer|Engineer|Designer|Analyst|Manager|Lead|Architect|Specialist|Consultant|Coordinator))`),
	// "Senior Python Developer position"
	regexp.MustCompile(`([A-Z][A-Za-z/\-\s]+(?:Developer|Engineer|Designer|Analyst|Manager|Lead|Architect|Specialist|Consultant|Coordinator))\s+position`),
	// "Hiring: Senior Python Developer"
	regexp.MustCompile(`(?:Hiring|Vacancy|Position)[:\s]+([A-Z][A-Za-z/\-\s]+)`),
	// "Job: Senior Python Developer"
	regexp.MustCompile(`(?:Job|Role|Position)[:\s]+([A-Z][A-Za-z/\-\s]+)`),
	// First line often carries the title
	regexp.MustCompile(`(?m)^([A-Z][A-Za-z\s/\-]+)$`),
}

var companyPatterns = []*regexp.Regexp{
	// "at TechCorp" or "@ TechCorp"
	regexp.MustCompile(`(?:at|@)\s+([A-Z][A-Za-z0-9\s&\-.]+?)(?:\s+is|\s+we|\s+are|,|\.|\n)`),
	// "TechCorp is hiring"
	regexp.MustCompile(`([A-Z][A-Za-z0-9\s&\-.]+?)\s+is\s+(?:hiring|looking|seeking)`),
	// "Company: TechCorp", the value never crosses a line break
	regexp.MustCompile(`(?:Company|Organization|Employer)[:\s]+([A-Za-z0-9 \t&\-.]+)`),
	// "Join TechCorp"
	regexp.MustCompile(`Join\s+([A-Z][A-Za-z0-9\s&\-.]+?)(?:\s+as|\s+team|!|,|\.|\n)`),
	// "About CompanyName" section header
	regexp.MustCompile(`About\s+([A-Z][A-Za-z0-9]+)(?:\s|$|\n)`),
}

var companyDomainPattern = regexp.MustCompile(`https?://(?:www\.)?([a-zA-Z0-9\-]+)\.`)

// Link shorteners and platforms whose domain is not the employer
var skipDomains = []string{"linkedin", "indeed", "glassdoor", "github", "twitter", "t", "x", "google", "bit", "tinyurl"}

var locationPatterns = []*regexp.Regexp{
	// "Location: City, Country" or "Based in Berlin"
	regexp.MustCompile(`(?:Location|Based in|Office in|Located in)[:\s]+([A-Z][A-Za-z\s,]{2,30}?)(?:\.|,\s*[a-z]|\n|$)`),
	// "New York, NY" or "London, UK"
	regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?,\s*[A-Z]{2,3})\b`),
	// "in San Francisco"
	regexp.MustCompile(`(?:based |located |position )?in\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s*(?:[,.\n]|$)`),
}

// Words that mark a location candidate as a false positive
var locationSkipWords = []string{"team", "company", "role", "position", "job", "work", "stack"}

var requirementsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Requirements|Qualifications|What we['\s]re looking for|Must have|Skills)[:\s]*\n((?:[-•*]\s*[^\n]+\n?)+)`),
	regexp.MustCompile(`(?is)(?:Requirements|Qualifications)[:\s]*(.*?)(?:\n\n|\n[A-Z]|$)`),
}

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s<>\[\]()"']+`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Application link hosts checked before falling back to the first URL
var applicationDomains = []string{
	"linkedin.com",
	"indeed.com",
	"lever.co",
	"greenhouse.io",
	"workable.com",
	"breezy.hr",
	"jobs.",
	"careers.",
	"apply.",
}
