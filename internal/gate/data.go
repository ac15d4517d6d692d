package gate

import "regexp"

// stopWords are excluded from the question before overlap scoring.
var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "can": {}, "could": {}, "did": {}, "do": {},
	"does": {}, "for": {}, "from": {}, "had": {}, "has": {}, "have": {},
	"how": {}, "i": {}, "if": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "s": {}, "so": {},
	"t": {}, "tell": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"there": {}, "they": {}, "this": {}, "to": {}, "was": {}, "we": {},
	"were": {}, "what": {}, "when": {}, "where": {}, "which": {}, "who": {},
	"whom": {}, "why": {}, "will": {}, "with": {}, "would": {}, "you": {},
	"your": {},
}

// metaQuestionPatterns match questions about the bot itself. These are
// answered from the persona instructions, never from retrieved lore.
var metaQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwho\s+are\s+you\b`),
	regexp.MustCompile(`(?i)\bwho\s+(created|made|built)\s+you\b`),
	regexp.MustCompile(`(?i)\bwhat\s+are\s+you\b`),
	regexp.MustCompile(`(?i)\bwhat('?s| is)\s+your\s+name\b`),
	regexp.MustCompile(`(?i)\bwhat\s+model\s+are\s+you\b`),
	regexp.MustCompile(`(?i)\bare\s+you\s+(an?\s+)?(ai|bot|robot|human|chatbot)\b`),
	regexp.MustCompile(`(?i)\bhow\s+do\s+you\s+work\b`),
}
