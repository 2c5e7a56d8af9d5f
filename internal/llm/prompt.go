package llm

import "fmt"

// SystemInstruction is sent as the system message of every extraction request.
const SystemInstruction = "You are a helpful assistant designed to output JSON."

const promptTemplate = `You are an expert receipt processing assistant. Analyze the following raw OCR text from a receipt
and extract the key information.

Provide the output in valid JSON with the structure:
{
  "merchant_name": "string",
  "purchased_at": "YYYY-MM-DDTHH:MM:SS",
  "total_amount": "float",
  "items": [
    {
      "description": "string",
      "quantity": "float",
      "price": "float"
    }
  ]
}

If a value is not found, use null. Use ISO 8601 format for purchased_at.

OCR Text:
---
%s
---
`

// BuildPrompt embeds raw OCR text into the extraction prompt.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
