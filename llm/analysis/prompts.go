package analysis

// Templates use FString placeholders; literal braces are doubled.

const classifyPrompt = `Analyze the following text and categorize it. Determine:
1. Content type (task, story, technical document, report, etc.)
2. Main topics/themes
3. Key entities (people, organizations)
4. Urgency level (if applicable)
5. Action items or tasks (if any)

Text: {text}

Provide your analysis in the following JSON format:
{{
    "content_type": "type of content",
    "main_topics": ["topic1", "topic2"],
    "key_entities": ["entity1", "entity2"],
    "urgency_level": "low/medium/high/none",
    "action_items": ["action1", "action2"],
    "summary": "brief summary of the content"
}}`

const taskSummaryPrompt = `Create a task-oriented summary of the following text. Focus on:
- Action items and tasks
- Deadlines and priorities
- Responsible parties
- Dependencies

Format as bullet points with clear action items.

Text: {text}

Task Summary:`

const storySummaryPrompt = `Create a story summary of the following text. Include:
- Main characters
- Plot summary
- Key themes
- Setting

Text: {text}

Story Summary:`

const generalSummaryPrompt = `Create a comprehensive summary of the following text. Include:
- Main points and key information
- Important details
- Conclusions or outcomes

Text: {text}

Summary:`
