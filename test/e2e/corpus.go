// Package e2e exercises the full question answering pipeline over a corpus of
// internal knowledge base documents.
package e2e

import "fmt"

// CorpusDocument is one file in the test corpus. Content is a single short
// sentence, so every document produces exactly one chunk and the stored chunk
// text equals Content byte for byte.
type CorpusDocument struct {
	Filename string
	Content  string
}

// QuestionCase asks a question and names the file whose chunk must come back
// as the top ranked source.
type QuestionCase struct {
	Question     string
	ExpectedFile string
	Description  string
}

// SearchCase runs a keyword query and names the file that must appear among
// the hits.
type SearchCase struct {
	Query        string
	ExpectedFile string
	Description  string
}

// Corpus bundles the documents with the cases that run against them.
type Corpus struct {
	Documents     []CorpusDocument
	QuestionCases []QuestionCase
	SearchCases   []SearchCase
}

// corpusEntries lists filename, content, and a keyword that appears in no
// other entry. Question cases repeat the stored sentence verbatim: the mock
// embedder hashes the input text, so identical text maps to an identical
// vector and the matching chunk is guaranteed to rank first on cosine
// similarity. Search cases rely on the keyword being unique across the corpus.
var corpusEntries = []struct {
	filename string
	content  string
	keyword  string
}{
	{"fire-safety.txt", "The server room uses a halon gas suppression system that triggers when two independent smoke detectors agree.", "halon"},
	{"backup-policy.txt", "Database backups run nightly at two in the morning and are kept for ninety days in offsite cold storage.", "offsite"},
	{"vacation-policy.md", "Full time employees accrue twenty five vacation days per year and unused days expire at the end of March.", "accrue"},
	{"expense-policy.md", "Travel expenses above five hundred euros require written approval from a department head before booking.", "department"},
	{"oncall-rotation.txt", "The on call rotation hands over every Tuesday at noon and the secondary responder covers escalations.", "responder"},
	{"parking-rules.txt", "Underground parking spots are assigned by seniority and visitors must register their license plate at reception.", "license"},
	{"vpn-setup.md", "Remote access requires the WireGuard client and a hardware security key enrolled with the identity team.", "wireguard"},
	{"password-policy.txt", "Passwords must be at least sixteen characters long and a breached credential forces an immediate reset.", "breached"},
	{"data-retention.md", "Customer records are anonymized after seven years unless an active contract extends the retention window.", "anonymized"},
	{"incident-response.md", "A severity one incident pages the duty manager and opens a bridge call within fifteen minutes.", "severity"},
	{"deploy-process.txt", "Production deployments ship from the release branch after the canary stage has baked for one hour.", "canary"},
	{"code-review.md", "Pull requests need two approvals and the linter gate blocks merges with unresolved warnings.", "linter"},
	{"kitchen-rules.txt", "The espresso machine is descaled every Friday and the last person leaving cleans the milk wand.", "espresso"},
	{"travel-booking.md", "Flights are booked through the Concur portal and economy class applies to trips under six hours.", "concur"},
	{"security-training.txt", "Annual security training covers phishing simulations and completion is tracked in the compliance dashboard.", "phishing"},
	{"printer-setup.txt", "The third floor printer accepts jobs over IPP and purges unclaimed printouts after four hours.", "printouts"},
	{"benefits-overview.md", "The health plan includes dental coverage and premiums are deducted from gross salary each month.", "dental"},
	{"equipment-loan.txt", "Loaner laptops are checked out at the helpdesk for a maximum of two weeks with manager approval.", "loaner"},
	{"wifi-access.txt", "Guest wifi uses a rotating passphrase displayed at the front desk and expires every Monday morning.", "passphrase"},
	{"meeting-rooms.md", "Conference rooms are booked through the shared calendar and a no show releases the room after ten minutes.", "conference"},
	{"payroll-schedule.txt", "Salaries are paid on the twenty fifth of each month and payslips appear in the portal one day earlier.", "payslips"},
	{"relocation-support.md", "International relocations include visa sponsorship and a lump sum that covers shipping and temporary housing.", "visa"},
	{"gym-benefit.txt", "The company subsidizes gym memberships up to forty euros per month against a quarterly attendance report.", "attendance"},
	{"pet-policy.txt", "Dogs are welcome on the fourth floor provided they are registered and vaccinated against rabies.", "rabies"},
	{"api-guidelines.md", "Public endpoints keep backwards compatibility for two major versions and deprecations are announced a quarter ahead.", "deprecations"},
	{"database-conventions.md", "Schema names use singular nouns and migration files carry a sortable timestamp prefix.", "migration"},
	{"logging-guide.md", "Services log structured JSON to stdout and request identifiers propagate through every downstream call.", "propagate"},
	{"feature-flags.md", "New features launch behind flags and stale flags are removed within two sprints of full rollout.", "sprints"},
	{"load-testing.md", "Load tests replay scrubbed production traffic against the staging cluster every Thursday night.", "scrubbed"},
	{"dns-management.txt", "DNS records live in Terraform and manual changes in the registrar console are forbidden.", "registrar"},
	{"email-security.txt", "Outbound mail is signed with DKIM and the SPF record rejects unknown sending hosts.", "dkim"},
	{"contract-terms.txt", "The master service agreement renews automatically unless either party gives notice one quarter before the anniversary date.", "anniversary"},
	{"invoice-processing.md", "Supplier invoices are matched against purchase orders and payment runs execute every second Wednesday.", "invoices"},
	{"quarterly-report.txt", "Quarterly revenue grew twelve percent driven by subscription renewals across enterprise accounts.", "renewals"},
	{"hiring-process.md", "Engineering candidates complete a take home exercise followed by a system design interview and a values conversation.", "candidates"},
	{"offboarding.txt", "Departing employees return their hardware on the last day and access tokens are revoked at midnight.", "revoked"},
	{"data-classification.md", "Documents are labeled public internal or confidential and confidential files never leave the managed tenant.", "tenant"},
	{"workplace-ergonomics.txt", "Standing desks are available on request and the facilities team performs ergonomic assessments quarterly.", "ergonomic"},
	{"sustainability.md", "The office runs on certified renewable electricity and travel emissions are offset through a vetted program.", "renewable"},
	{"mentorship.md", "The mentorship program pairs every new joiner with a senior engineer for the first six months.", "mentorship"},
}

// BuildCorpus assembles the corpus with one question case and one keyword
// search case per document.
func BuildCorpus() *Corpus {
	c := &Corpus{}
	for _, e := range corpusEntries {
		c.Documents = append(c.Documents, CorpusDocument{
			Filename: e.filename,
			Content:  e.content,
		})
		c.QuestionCases = append(c.QuestionCases, QuestionCase{
			Question:     e.content,
			ExpectedFile: e.filename,
			Description:  fmt.Sprintf("question answered from %s", e.filename),
		})
		c.SearchCases = append(c.SearchCases, SearchCase{
			Query:        e.keyword,
			ExpectedFile: e.filename,
			Description:  fmt.Sprintf("keyword %s found in %s", e.keyword, e.filename),
		})
	}
	return c
}
