// Package templates holds the fixed set of applicant email templates and the
// placeholder substitution used to fill them.
package templates

import (
	"errors"
	"sort"
	"strings"
)

var ErrUnknownTemplate = errors.New("unknown template")

type Category string

const (
	CategoryInterview   Category = "interview"
	CategoryRejection   Category = "rejection"
	CategoryShortlisted Category = "shortlisted"
	CategoryOffer       Category = "offer"
)

type Template struct {
	Key      string   `json:"key"`
	Category Category `json:"category"`
	Subject  string   `json:"subject"`
	Message  string   `json:"message"`
}

type Rendered struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

const (
	InterviewInvitation  = "interview-invitation"
	ApplicationRejection = "application-rejection"
	ApplicationShortlist = "application-shortlisted"
	OfferLetter          = "offer-letter"
)

var builtin = map[string]Template{
	InterviewInvitation: {
		Category: CategoryInterview,
		Subject:  "Interview Invitation",
		Message: `Dear {applicant_name},
I hope this email finds you well. Thank you for your interest in the {position} position at {company_name}.

After reviewing your application, we would like to invite you for an interview to discuss your qualifications and experience in more detail.

Interview Details:
- Date: {interview_date}
- Time: {interview_time}
- Platform: Zoom
- Meeting Link: {zoom_link}

Please confirm your availability by replying to this email. If this time doesn't work for you, please let us know your availability and we'll do our best to accommodate.

We look forward to speaking with you soon!

Best regards,
{employer_name}
{company_name}
{contact_phone}`,
	},
	ApplicationRejection: {
		Category: CategoryRejection,
		Subject:  "Update on Your Application",
		Message: `Dear {applicant_name},
Thank you for your interest at {company_name} and for taking the time to submit your application.

After careful consideration of all applications, we have decided to move forward with other candidates whose qualifications more closely match our current needs.

We appreciate your interest in {company_name} and encourage you to apply for future opportunities that align with your skills and experience.

We wish you the best in your job search.

Best regards,
{employer_name}
{company_name}`,
	},
	ApplicationShortlist: {
		Category: CategoryShortlisted,
		Subject:  "Great News! Your Application Has Been Shortlisted",
		Message: `Dear {applicant_name},
Congratulations! Your application at {company_name} has been shortlisted.

We were impressed by your qualifications and experience, and we would like to move forward with your application to the next stage of our recruitment process.

Our team will be in touch soon with more details about the next steps. In the meantime, please feel free to reach out if you have any questions.

Thank you for your interest in joining {company_name}.

Best regards,
{employer_name}
{company_name}`,
	},
	OfferLetter: {
		Category: CategoryOffer,
		Subject:  "Job Offer",
		Message: `Dear {applicant_name},
Congratulations! We are pleased to offer you the {position} position at {company_name}.

After careful consideration of your qualifications, experience, and our interview discussions, we believe you will be a valuable addition to our team.

Position Details:
- Title: {position}
- Start Date: {start_date}
- Salary: {salary}
- Location: {location}

Please review the attached offer letter for complete details including benefits, reporting structure, and next steps.

If you have any questions or need clarification on any aspect of this offer, please don't hesitate to contact me directly.

We look forward to welcoming you to the {company_name} team!

Best regards,
{employer_name}
{company_name}`,
	},
}

// Get returns the template stored under key.
func Get(key string) (Template, bool) {
	t, ok := builtin[key]
	if !ok {
		return Template{}, false
	}
	t.Key = key
	return t, true
}

// All lists every template ordered by key.
func All() []Template {
	out := make([]Template, 0, len(builtin))
	for _, k := range keys() {
		t, _ := Get(k)
		out = append(out, t)
	}
	return out
}

// ByCategory lists the templates of one category ordered by key.
func ByCategory(c Category) []Template {
	var out []Template
	for _, t := range All() {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// Render fills the subject and message of the template stored under key.
func Render(key string, vars map[string]string) (Rendered, error) {
	t, ok := Get(key)
	if !ok {
		return Rendered{}, ErrUnknownTemplate
	}
	return Rendered{
		Subject: Replace(t.Subject, vars),
		Message: Replace(t.Message, vars),
	}, nil
}

// Replace substitutes every {name} token whose name is in vars. Tokens with
// no entry are left as they are. Keys are applied one at a time in sorted
// order, so a value that itself contains a {token} may be substituted again
// by a later key.
func Replace(s string, vars map[string]string) string {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		s = strings.ReplaceAll(s, "{"+k+"}", vars[k])
	}
	return s
}

func keys() []string {
	out := make([]string, 0, len(builtin))
	for k := range builtin {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
