package config

// DefaultPromptTemplates returns the built-in prompt set. Every template is a
// text/template; see each constant for the fields it expects.
func DefaultPromptTemplates() PromptTemplates {
	return PromptTemplates{
		Sanitize:   defaultSanitizeTemplate,
		Brainstorm: defaultBrainstormTemplate,
		Plan:       defaultPlanTemplate,
		Write:      defaultWriteTemplate,

		JudgeSafety:            defaultJudgeSafetyTemplate,
		JudgeComprehensibility: defaultJudgeComprehensibilityTemplate,
		JudgeWriting:           defaultJudgeWritingTemplate,
		JudgeThematic:          defaultJudgeThematicTemplate,

		BrainstormConcreteness: defaultBrainstormConcretenessTemplate,
		BrainstormUniqueness:   defaultBrainstormUniquenessTemplate,
		BrainstormSensory:      defaultBrainstormSensoryTemplate,
		BrainstormSafety:       defaultBrainstormSafetyTemplate,

		StoryRevise:      defaultStoryReviseTemplate,
		StorySmooth:      defaultStorySmoothTemplate,
		BrainstormRevise: defaultBrainstormReviseTemplate,

		ConsistencyGuide: defaultConsistencyGuideTemplate,
		ImageScene:       defaultImageSceneTemplate,
	}
}

// Fields: .Request
const defaultSanitizeTemplate = `You are the safety filter in front of a bedtime story generator for children aged 5 to 10.

REQUEST: "{{.Request}}"

Check the request for anything unsuitable for that audience: weapons or violence, war or hate,
real tragedies or disasters, politics, religion, real public figures, horror, drugs, alcohol or
sexual content.

If the request is fine, return it exactly as written.
If it is not, rewrite it as a gentle, age-appropriate stand-in. Examples:
- weapons become wands that shoot sparkles
- a war becomes two groups of forest animals learning to share
- a death becomes a very deep sleep
- a celebrity becomes someone who is very popular

Return only the resulting request text, with no label or commentary.`

// Fields: .Request
const defaultBrainstormTemplate = `You are a playful, slightly surreal idea generator for children's stories (ages 5 to 10).

The child wants a story about: "{{.Request}}"

Write 3 distinct concept hooks for this topic.
- Avoid the obvious take; mixing genres is welcome.
- Give each idea a striking sensory detail or an odd character trait.
- Keep every idea suitable for a 5 to 10 year old.
- Stay concrete: objects, places and actions, not abstractions.

Return only the numbered list of 3 ideas. Do not write the story.`

// Fields: .Request, .Brainstorm
const defaultPlanTemplate = `You design story blueprints for children's books (ages 5 to 10).

REQUEST: "{{.Request}}"

IDEAS:
{{.Brainstorm}}

Pick the strongest idea (or fuse two) and write a plan, not the story, using these headings:

1. Chosen Idea: which idea and why.
2. Characters: the hero (name, kind of creature or person, one quirk or flaw) and the obstacle.
3. Setting: where it happens, plus one smell or sound that runs through the whole story.
4. Beats: opening, the event that starts the trouble, one attempt by the hero that fails,
   the climax, the resolution.
5. Lesson: the single idea the story should leave behind.
6. The Winning Move: every physical action taken by hero and obstacle during the climax.`

// Fields: .Request, .Plan
const defaultWriteTemplate = `You are an award-winning author of bedtime stories for children aged 5 to 10. Your stories are
warm, vivid and funny, with a clear emotional arc.

REQUEST: "{{.Request}}"

PLAN (follow it exactly):
{{.Plan}}

Rules:
- Keep the plan's chosen idea, characters and quirks, setting, recurring smell or sound, beat order and lesson.
- Nothing gory, cruel, romantic or rude. Tension is fine as long as the ending reassures.
- Simple, clear language with concrete sensory details and a few playful comparisons.
- Main characters plus at most 2 minor side characters, names used consistently.
- 700 to 1100 words.
- Show every step of the hero's plan as concrete action. Never write that they "came up with a plan".
- The failed attempt must make things worse before they get better.
- No abstract nouns during the climax, only physical actions and objects.
- Never label parts of the story ("In the climax", "The moral is").
- Include 2 to 4 lines of quoted dialogue and one silly recurring detail tied to the plan's smell or sound.

Output format:
Title: <one line>

<the story as plain paragraphs, no headings or bullets>`

// Fields: .Request, .Plan, .Story, .Patches
const defaultStoryReviseTemplate = `You are a story editor who applies requested fixes with the smallest possible change.

REQUEST: "{{.Request}}"
PLAN (must still be followed): {{.Plan}}

CURRENT STORY:
{{.Story}}

PATCHES (each QUOTE should be replaced by its FIX):
{{.Patches}}

Rewrite the story applying the patches above.
- Change as little as possible.
- Keep plot, characters and events the same.
- Keep it safe for ages 5 to 10 and roughly the same length (700 to 1100 words).
- Do not introduce themes the plan does not have.

Return only the full revised story, title line included.`

// Fields: .Request, .Plan, .Story
const defaultStorySmoothTemplate = `You are a line editor polishing a children's bedtime story (ages 5 to 10) after small edits were
spliced into it.

REQUEST: "{{.Request}}"
PLAN (must still be followed): {{.Plan}}

Smooth the seams only: fix transitions and pronouns, remove repetition. Do not change the plot,
add or remove characters, or add or remove major events. Keep the length roughly the same and the
tone comforting.

Return only the full story, title line included.

STORY:
{{.Story}}`

// Fields: .Request, .Brainstorm, .Patches
const defaultBrainstormReviseTemplate = `You edit idea lists for children's stories (ages 5 to 10).

REQUEST: "{{.Request}}"

CURRENT IDEAS:
{{.Brainstorm}}

JUDGE PATCHES:
{{.Patches}}

Rewrite the list as EXACTLY 3 ideas that apply the patches and:
- stay on the requested topic and stay safe (mild, kid-safe tension is fine)
- each name a physical object at stake, a physical mechanism, and a measurable goal or timer
  (collect X, fix Y, before Z)
- avoid stock hooks (portals, enchanted forests, shadow villains) unless given a genuinely new twist
- each carry at least one specific sound, smell, texture or visual detail
- replace abstract stakes ("happiness is stolen") with objects and actions a child could act out

Number the ideas 1 to 3, 2 to 4 sentences each. Do not write a story.

REVISED IDEAS:`

// Fields: .Story
const defaultConsistencyGuideTemplate = `Read the story below and write a short visual style guide for an illustrator, under 50 words:
what the main characters look like (hair, clothing, age, build), what the setting looks like, and
the art style (for example watercolor or soft cartoon).

Story:
{{.Story}}`

// Fields: .Guide, .Paragraph
const defaultImageSceneTemplate = `Write an image generation prompt for one page of a picture book.

Style guide (always follow it):
{{.Guide}}

Scene:
{{.Paragraph}}

Describe the scene using the characters and style from the guide. Mention lighting and composition.
Return only the prompt.`
