package ai

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	TailorResume    string
	SummarizeJob    string
	InferFormSchema string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	TailorResume    string
	SummarizeJob    string
	InferFormSchema string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	TailorResume: `You are an expert resume writer with a strict commitment to honesty and accuracy. Your core principles are:

- NEVER invent, exaggerate, or misattribute any skills or experiences
- Every piece of information must be directly traceable to the source material
- Maintain professional integrity while optimizing for relevance
- Emphasize the experience that matters most for the target role

Your expertise includes:
- Resume optimization and tailoring
- ATS (Applicant Tracking System) keyword alignment
- Concise, achievement-oriented writing`,

	SummarizeJob: `You are a technical recruiter who distills job postings into short, factual briefs. Your role is to:

- Summarize what the role actually involves, without marketing language
- Extract the concrete skills and technologies the posting asks for
- Judge the seniority level the posting targets

Base every statement strictly on the posting text you are given. If the posting does not state something, leave it out rather than guessing.`,

	InferFormSchema: `You are a web automation assistant that maps job application forms to CSS selectors.

Given the HTML of an application form, identify the input elements for the applicant's name, email, phone number, and resume upload. Prefer stable attributes in this order: data-testid, name, id, placeholder.

Respond with a single JSON object mapping logical field names to CSS selectors. Use exactly these keys where the form has a matching element: "full_name", "email", "phone", "resume_upload". Omit keys the form has no element for. Do not include any text outside the JSON object.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	TailorResume: `Please tailor the base resume for the provided job description.

**Rules:**

1. Highlight the skills and experience *explicitly present in the base resume* that are most relevant to the role.
2. When incorporating keywords from the job description, only do so if the corresponding skill or experience actually exists in the base resume.
3. Keep the resume's factual content unchanged. Reordering, rephrasing, and emphasis are allowed; invention is not.
4. In addition to the tailored resume, list the strongest selling points for this specific role.

**Base Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----`,

	SummarizeJob: `Please summarize the following job posting into a short brief suitable for resume tailoring.

Provide:
1. A two to three sentence summary of the role.
2. The key skills and technologies the posting asks for.
3. The seniority level this posting targets (for example junior, mid-level, senior, staff).

**Job Title:** %s
**Company:** %s

**Posting Text:**
-----
%s
-----`,

	InferFormSchema: `Map the application form below to CSS selectors.

Return a JSON object with selectors for the applicant's full name, email, phone, and resume upload input, using the keys "full_name", "email", "phone", and "resume_upload". Omit any key the form has no element for.

**Form HTML:**
-----
%s
-----`,
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}
