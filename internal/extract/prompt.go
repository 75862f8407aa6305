package extract

import "fmt"

const extractSystemPrompt = `You are a receipt/invoice parser. Given raw OCR text, extract structured data.
Return ONLY valid JSON, no markdown, no explanation.
If a value is uncertain or missing, use empty string "" or false.
For date use YYYY-MM-DD when possible.
For total_amount use the final total (after tax) as string with digits and optional decimal.
For line_items extract item description, quantity, price when visible.
Suggest category from: Electronics, Home, Food, Health, Transport, Clothing, Other.
Set warranty_suspected true only for electronics, appliances, high-value items.`

func extractUserPrompt(rawText string) string {
	return fmt.Sprintf("Parse this OCR text into the exact JSON shape below. Return nothing else.\n\n"+
		"```json\n"+
		"{\n"+
		"  \"type\": \"\",\n"+
		"  \"merchant_name\": \"\",\n"+
		"  \"date\": \"\",\n"+
		"  \"total_amount\": \"\",\n"+
		"  \"currency\": \"\",\n"+
		"  \"category\": \"\",\n"+
		"  \"warranty_suspected\": false,\n"+
		"  \"line_items\": [\n"+
		"    { \"description\": \"\", \"quantity\": \"\", \"price\": \"\" }\n"+
		"  ]\n"+
		"}\n"+
		"```\n\n"+
		"OCR text:\n%s", rawText)
}
