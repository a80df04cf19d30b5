package vision

const chartPrompt = `Analyze this chart or data visualization. Provide a concise description including:

1. **Chart Type**: (bar, line, pie, scatter, etc.)
2. **Data Shown**: What data or metrics are being visualized
3. **Key Insights**: Main trends, patterns, or notable data points
4. **Axes/Labels**: Description of axes, units, and labels if visible
5. **Summary**: One sentence summary of what the chart communicates

Be specific and factual. If you can read specific values, include them.`

const diagramPrompt = `Analyze this diagram. Provide a concise description including:

1. **Diagram Type**: (flowchart, org chart, process diagram, architecture, etc.)
2. **Main Components**: Key elements or nodes in the diagram
3. **Relationships**: How components connect or relate to each other
4. **Flow/Direction**: The overall flow or hierarchy if applicable
5. **Text Labels**: Any important text labels or annotations

Focus on structure and relationships.`

const screenshotPrompt = `Analyze this screenshot. Provide a concise description including:

1. **Application/Context**: What application or interface is shown
2. **Main Elements**: Key UI elements, buttons, or sections visible
3. **Content**: Any text content or data displayed
4. **State**: Current state or what action is being shown
5. **Purpose**: What the screenshot appears to demonstrate

Transcribe any visible text accurately.`

const generalPrompt = `Describe this image concisely. Include:

1. **Image Type**: (photo, illustration, icon, logo, graphic, etc.)
2. **Main Subject**: What the image primarily shows
3. **Key Elements**: Important visual elements and their arrangement
4. **Text Content**: Any visible text (transcribe accurately)
5. **Purpose**: Apparent purpose in a presentation context

Be factual and specific. Keep the description under 150 words.`

// buildPrompt selects the prompt for kind and appends the location context.
func buildPrompt(kind AnalysisKind, imageContext string) string {
	var prompt string
	switch kind {
	case KindChart:
		prompt = chartPrompt
	case KindDiagram:
		prompt = diagramPrompt
	case KindScreenshot:
		prompt = screenshotPrompt
	default:
		prompt = generalPrompt
	}
	if imageContext != "" {
		prompt += "\n\n**Context**: " + imageContext
	}
	return prompt
}
