package prompts

// ArcPrompt plans the hidden arc. Slots: comma-joined genres, subject line.
const ArcPrompt = `Create a structured story arc with exactly 5 major plot points for a %s story. It must be 8-12 steps long.
The plot points MUST follow these phases in order: setup, risingAction, complication, climax, resolution.
Give every plot point a short description and a single-word or short emotional tone (e.g. mysterious, tense, joyful).
%s
You MUST run the 'storyArc' tool.`

const ArcSubject = "Create a story arc about: %s"

const ArcSubjectDefault = "Create an engaging story arc."

const ArcToolDescription = "Create a structured story arc with 5 major plot points"

const TurnToolDescription = "The next 4 options for the story"

// TurnRules are shared by the introduction and continuation instructions.
const TurnRules = `
CRITICAL GUIDELINES:
- Keep narration tight and focused on action and consequences
- Every scene must meaningfully progress the plot and present clear stakes and tension
- Avoid repetitive scenarios or circular choices

Present exactly four dramatically different options (never more, never fewer). Each option should:
- Be a decisive action that drives the plot forward in its own, different direction
- Have clear and different consequences from the other three
- NEVER be passive, "safe" or purely investigative (no waiting, looking around, examining or asking for more information)
- Build upon previous choices without getting stuck
The four options MUST be distinct from each other. You should always send 4 interesting options. ALWAYS.

Generate a detailed image prompt for this scene in a dreamlike, painterly style similar to Studio Ghibli films, with rich colors and beautiful landscapes. The image MUST be in landscape (16:9) ratio, with visual continuity between scenes: character appearances, environments and color palettes stay consistent.
The narrator text MUST NOT mention the art style, Studio Ghibli, image ratios or anything about how the scene is drawn. Style words belong only in image prompts.

Keep narrator prompts concise (tweet-length) yet immersive, written in second person, focusing on action and stakes rather than description.
`

// IntroPrompt opens a new story. Slots: genres, style guidance, tone guidance,
// phase description, phase tone, rules, hidden arc, subject line.
const IntroPrompt = `Create an immersive but concise introduction for a story based on the selected genres: %s. Immediately establish an engaging scenario with clear stakes where the reader becomes the protagonist.

Focus on action and forward momentum. Avoid lengthy descriptions: use vivid but efficient language to set the scene. Create immediate tension or intrigue that demands action.

%s
%s

Current story phase: %s
Emotional tone for this phase: %s
%s
HIDDEN STORY ARC (never reveal this to the user, never quote or summarize it in the narration or options, but use it to guide the story direction):
%s

%s
You MUST run the 'nextSteps' tool.`

const IntroSubject = "The user wishes the story to be about: %s"

const IntroImages = "The attached images are reference material: draw characters, places or objects from them into the story and keep the illustrations visually consistent with them."

// ContinuePrompt advances the story by one scene. Slots: transcript, subject
// line, genres line, style guidance, tone guidance, phase description, phase
// tone, rules, avoid list, hidden arc.
const ContinuePrompt = `Continue the adventure with immediate forward momentum. Create a concise but impactful next chapter that advances the plot significantly and follows from the choice I just made.

%s
%s
%s
%s
%s

Current story phase: %s
Emotional tone for this phase: %s
%s
%s

HIDDEN STORY ARC (never reveal this to the user, never quote or summarize it in the narration or options, but use it to guide the story direction):
%s

You MUST run the 'nextSteps' tool.`

const ContinueSubject = "Remember that this adventure revolves around: %s"

const ContinueGenres = "Maintain the tone and elements appropriate for these genres: %s"

const AvoidInstruction = "Do not repeat or rephrase any of the previously shown options listed above."

// ChoiceMessage replays the reader's selection.
const ChoiceMessage = `I chose: "%s"`

// ImagePrompt wraps a scene's image prompt. Slots: prompt, style guidance.
const ImagePrompt = `Generate this hypothetical image: %s. %s
The image MUST be in landscape (16:9) ratio with a cinematic, dreamlike and painterly quality similar to Studio Ghibli films, keeping characters and environments consistent with earlier scenes.`

// NextFramePrompt drives the single-shot next frame. Slots: previous image
// prompts, previous inputs, latest input, rules.
const NextFramePrompt = `Previously, you generated these prompts: %s. for these inputs: %s
Now, in the SAME STYLE, generate a new prompt for the next image. Make sure the image prompts are vivid, detailed, and captivating. The next image prompt should be something like %s.
%s
You MUST run the 'nextSteps' tool.`

// DefaultSpeechTone is used when the caller gives no tone.
const DefaultSpeechTone = "Speak in a cheerful and positive tone."

const SpeechTone = "Speak in a %s tone."
