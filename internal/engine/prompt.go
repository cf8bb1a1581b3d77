package engine

// LLM prompt templates: data only, no logic.

// analysisPrompt asks for four prose sections over a video transcript.
// Args: transcript (already truncated).
const analysisPrompt = `Analyze the following YouTube video transcript and provide:

1. **Summary** (2-3 paragraphs): What is this video about?

2. **Key Points** (bullet list): The main takeaways from the video

3. **Notable Quotes** (if any): Any particularly impactful or memorable statements

4. **Topics Covered** (tags): List the main topics/themes as tags

---

TRANSCRIPT:
%s
`
