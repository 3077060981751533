// Package recommend resolves remediation guidance for accessibility rule
// violations. Guidance comes from a hand-authored catalog of common rule
// ids; candidates from untrusted sources pass through a total
// normalization boundary before anything downstream sees them.
package recommend

import "github.com/xkilldash9x/a11yscope/api/schemas"

// Resolve looks up the static catalog. The second return is false when the
// rule id is not covered; that is an expected outcome, not an error, and
// signals that the generative fallback may fill the gap.
func Resolve(ruleID string) (schemas.Recommendation, bool) {
	rec, ok := catalog[ruleID]
	return rec, ok
}

// Catalogued reports whether a rule id has static guidance.
func Catalogued(ruleID string) bool {
	_, ok := catalog[ruleID]
	return ok
}

var catalog = map[string]schemas.Recommendation{
	"label": {
		ID:          "label",
		Title:       "Add labels to form elements",
		Description: "Every form control needs a programmatically associated label so screen reader users know what to enter.",
		Priority:    schemas.PriorityHigh,
		Effort:      schemas.EffortEasy,
		Impact:      "Users of assistive technology cannot determine the purpose of unlabeled inputs.",
		Steps: []string{
			"Add a <label> element whose for attribute matches the input's id.",
			"For controls without visible text, use aria-label or aria-labelledby.",
			"Avoid relying on placeholder text as the only label.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<input type="email" placeholder="Email">`,
			After:    `<label for="email">Email</label>` + "\n" + `<input type="email" id="email">`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Labels and Input Purpose (WCAG)", URL: "https://www.w3.org/WAI/tutorials/forms/labels/", Type: schemas.ResourceDocumentation},
		},
	},
	"color-contrast": {
		ID:          "color-contrast",
		Title:       "Increase text color contrast",
		Description: "Text must have a contrast ratio of at least 4.5:1 against its background (3:1 for large text).",
		Priority:    schemas.PriorityHigh,
		Effort:      schemas.EffortEasy,
		Impact:      "Low-contrast text is unreadable for users with low vision or in bright environments.",
		Steps: []string{
			"Measure the contrast ratio of flagged text with a contrast checker.",
			"Darken the foreground or lighten the background until the ratio passes.",
			"Re-check hover, focus, and disabled states after adjusting.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `.hint { color: #999; background: #fff; }`,
			After:    `.hint { color: #595959; background: #fff; }`,
			Language: schemas.LanguageCSS,
		},
		Resources: []schemas.Resource{
			{Title: "Contrast Checker", URL: "https://webaim.org/resources/contrastchecker/", Type: schemas.ResourceTool},
			{Title: "Understanding Contrast (Minimum)", URL: "https://www.w3.org/WAI/WCAG21/Understanding/contrast-minimum.html", Type: schemas.ResourceDocumentation},
		},
	},
	"image-alt": {
		ID:          "image-alt",
		Title:       "Add alternative text to images",
		Description: "Informative images need an alt attribute describing their content; decorative images need an empty alt.",
		Priority:    schemas.PriorityHigh,
		Effort:      schemas.EffortEasy,
		Impact:      "Screen reader users get no information from images without text alternatives.",
		Steps: []string{
			"Write concise alt text conveying the image's purpose, not its appearance.",
			`Mark purely decorative images with alt="" so they are skipped.`,
			"For complex charts, link to a longer text description.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<img src="chart.png">`,
			After:    `<img src="chart.png" alt="Sales grew 40% between January and June">`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Images Tutorial", URL: "https://www.w3.org/WAI/tutorials/images/", Type: schemas.ResourceGuide},
		},
	},
	"link-name": {
		ID:          "link-name",
		Title:       "Give links discernible text",
		Description: "Every link needs text content or an accessible name that makes sense out of context.",
		Priority:    schemas.PriorityHigh,
		Effort:      schemas.EffortEasy,
		Impact:      "Links announced as just 'link' or 'click here' are useless when navigating by link list.",
		Steps: []string{
			"Replace bare icon links with visually hidden text or aria-label.",
			"Rewrite generic link text to describe the destination.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<a href="/report"><i class="icon-download"></i></a>`,
			After:    `<a href="/report" aria-label="Download annual report"><i class="icon-download"></i></a>`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Link Purpose (In Context)", URL: "https://www.w3.org/WAI/WCAG21/Understanding/link-purpose-in-context.html", Type: schemas.ResourceDocumentation},
		},
	},
	"button-name": {
		ID:          "button-name",
		Title:       "Give buttons an accessible name",
		Description: "Buttons must expose a name through text content, aria-label, or aria-labelledby.",
		Priority:    schemas.PriorityHigh,
		Effort:      schemas.EffortEasy,
		Impact:      "Unnamed buttons are announced as just 'button', hiding their action from assistive technology.",
		Steps: []string{
			"Add visible text inside the button where the design allows.",
			"Otherwise add an aria-label describing the action.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<button><svg aria-hidden="true">...</svg></button>`,
			After:    `<button aria-label="Close dialog"><svg aria-hidden="true">...</svg></button>`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "ARIA: button role", URL: "https://developer.mozilla.org/docs/Web/Accessibility/ARIA/Roles/button_role", Type: schemas.ResourceDocumentation},
		},
	},
	"html-has-lang": {
		ID:          "html-has-lang",
		Title:       "Declare the page language",
		Description: "The <html> element needs a lang attribute so screen readers pick the right pronunciation rules.",
		Priority:    schemas.PriorityMedium,
		Effort:      schemas.EffortEasy,
		Impact:      "Without a language declaration, text may be read with the wrong voice and be unintelligible.",
		Steps: []string{
			`Add lang="en" (or the page's actual language) to the <html> element.`,
			"Mark inline passages in other languages with their own lang attribute.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<html>`,
			After:    `<html lang="en">`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Language of Page", URL: "https://www.w3.org/WAI/WCAG21/Understanding/language-of-page.html", Type: schemas.ResourceDocumentation},
		},
	},
	"document-title": {
		ID:          "document-title",
		Title:       "Add a descriptive page title",
		Description: "Each document needs a <title> that identifies its topic or purpose.",
		Priority:    schemas.PriorityMedium,
		Effort:      schemas.EffortEasy,
		Impact:      "The title is the first thing announced on page load and the label used in tabs and history.",
		Steps: []string{
			"Add a unique, front-loaded <title> to the document head.",
			"Update the title on client-side route changes.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<title></title>`,
			After:    `<title>Order history – Example Store</title>`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Page Titled", URL: "https://www.w3.org/WAI/WCAG21/Understanding/page-titled.html", Type: schemas.ResourceDocumentation},
		},
	},
	"meta-viewport": {
		ID:          "meta-viewport",
		Title:       "Allow zooming and scaling",
		Description: "The viewport meta tag must not disable user scaling or cap maximum-scale below 2.",
		Priority:    schemas.PriorityMedium,
		Effort:      schemas.EffortEasy,
		Impact:      "Disabling zoom locks out low-vision users who rely on pinch-to-zoom.",
		Steps: []string{
			"Remove user-scalable=no and any maximum-scale below 2 from the viewport meta tag.",
			"Verify layouts still work at 200% zoom.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<meta name="viewport" content="width=device-width, user-scalable=no">`,
			After:    `<meta name="viewport" content="width=device-width, initial-scale=1">`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Resize text", URL: "https://www.w3.org/WAI/WCAG21/Understanding/resize-text.html", Type: schemas.ResourceDocumentation},
		},
	},
	"heading-order": {
		ID:          "heading-order",
		Title:       "Fix heading level order",
		Description: "Heading levels should descend one step at a time; skipping levels breaks the document outline.",
		Priority:    schemas.PriorityLow,
		Effort:      schemas.EffortModerate,
		Impact:      "Screen reader users navigate by headings; a broken outline makes sections hard to find.",
		Steps: []string{
			"Audit the heading sequence and remove skipped levels.",
			"Style headings with CSS instead of picking levels for their size.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   "<h1>Docs</h1>\n<h4>Install</h4>",
			After:    "<h1>Docs</h1>\n<h2>Install</h2>",
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Headings Tutorial", URL: "https://www.w3.org/WAI/tutorials/page-structure/headings/", Type: schemas.ResourceGuide},
		},
	},
	"region": {
		ID:          "region",
		Title:       "Contain content in landmarks",
		Description: "All page content should live inside landmark regions (header, nav, main, footer, or ARIA equivalents).",
		Priority:    schemas.PriorityLow,
		Effort:      schemas.EffortModerate,
		Impact:      "Content outside landmarks is easy to miss when navigating by region.",
		Steps: []string{
			"Wrap primary content in a single <main> element.",
			"Move stray content into the appropriate semantic container.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<div class="content">...</div>`,
			After:    `<main class="content">...</main>`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Page Regions", URL: "https://www.w3.org/WAI/tutorials/page-structure/regions/", Type: schemas.ResourceGuide},
		},
	},
	"list": {
		ID:          "list",
		Title:       "Use correct list markup",
		Description: "<ul> and <ol> elements may only contain <li>, <script>, or <template> children.",
		Priority:    schemas.PriorityLow,
		Effort:      schemas.EffortEasy,
		Impact:      "Invalid list structure breaks item counts and list navigation in screen readers.",
		Steps: []string{
			"Move non-<li> children out of the list or into the nearest <li>.",
			"If the structure is not a list, replace the list element with a <div>.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<ul><div>First</div></ul>`,
			After:    `<ul><li>First</li></ul>`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "HTML lists", URL: "https://developer.mozilla.org/docs/Web/HTML/Element/ul", Type: schemas.ResourceDocumentation},
		},
	},
	"frame-title": {
		ID:          "frame-title",
		Title:       "Title every frame",
		Description: "Each <iframe> needs a title attribute describing its embedded content.",
		Priority:    schemas.PriorityMedium,
		Effort:      schemas.EffortEasy,
		Impact:      "Untitled frames are announced without context, leaving users guessing at their content.",
		Steps: []string{
			"Add a short, descriptive title attribute to each iframe.",
		},
		CodeExample: &schemas.CodeExample{
			Before:   `<iframe src="https://maps.example.com/embed"></iframe>`,
			After:    `<iframe src="https://maps.example.com/embed" title="Office location map"></iframe>`,
			Language: schemas.LanguageHTML,
		},
		Resources: []schemas.Resource{
			{Title: "Frames must have an accessible name", URL: "https://dequeuniversity.com/rules/axe/4.7/frame-title", Type: schemas.ResourceDocumentation},
		},
	},
}
