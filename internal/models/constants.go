package models

const (
	FigureIDRegex    = `(\d+\.\d+)`
	ContextSeparator = "\n---\n"

	// Sinhala for "Sorry, I could not find information about that."
	NoInformationMessage = "සමාවෙන්න, මට ඒ ගැන කරුණු හමු නොවුණා."
	SystemBusyMessage    = "The tutor is busy at the moment. Please try again shortly."
)

var (
	NormalizePromptTemplate = `Transliterate the student's informal (Singlish/phonetic) question into canonical %s script and extract search keywords.
Output strict JSON only: { "interpreted_question": "...", "keywords": ["...", "..."] }
Question: %s
Subject: %s
`

	AnswerPromptTemplate = `Role: O/L Tutor. Subject: %s. Medium: %s.
Answer the student's question using ONLY the reference context below.
Context:
%s
Question: %s
Answer in %s. If you mention a Figure ID (e.g. 8.1), copy it EXACTLY as written in the context. Never shorten or renumber it (8.9 must stay 8.9, never 9).
`

	FigurePromptTemplate = `Reference context:
%s
Question: %s
Answer: %s
Name the single figure ID (format digits.digits, e.g. 3.2) most relevant to the answer, or reply "none" if no figure applies. Reply with the ID or "none" only.
`
)
