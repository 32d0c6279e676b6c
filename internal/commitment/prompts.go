package commitment

const extractionSystemPrompt = `You extract commitments from check-in call transcripts between a coach and the person being coached.

Return only what the person said they would do, as a direct 1-2 sentence directive in second person ("Send the proposal to Acme by 3pm.").

Rules:
- Ignore everything the coach or agent said, including suggestions the person did not accept
- Keep concrete details: names, numbers, deadlines
- If there are several commitments, keep the one with the nearest deadline and at most one other
- No preamble, no quotes, no explanation`

const extractionUserPrompt = `Transcript:
---
%s
---

What did the person commit to?`
