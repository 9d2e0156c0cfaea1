package regulatory

// SetupInfo describes how a rental company registers for KABIS API access.
// Pure data, no I/O; served to the onboarding UI.
func SetupInfo() map[string]any {
	return map[string]any{
		"title":        "KABIS (Karayolu Bilgi Sistemi)",
		"description":  "Vehicle rental notification system of the Turkish Ministry of Transport and Infrastructure",
		"required_for": "All vehicle rental companies operating in Turkey",
		"registration_steps": []string{
			"1. Go to https://kabis.uab.gov.tr",
			"2. Click \"Yeni Kayit\" (new registration)",
			"3. Select the vehicle rental company option",
			"4. Enter company details (tax number, trade registry number)",
			"5. Enter the authorized contact person",
			"6. Complete e-mail verification",
			"7. Receive API credentials once the application is approved",
		},
		"required_documents": []string{
			"Vergi Levhasi (tax certificate)",
			"Ticaret Sicil Gazetesi (trade registry gazette)",
			"Imza Sirkuleri (signature circular)",
			"Arac Kiralama Yetki Belgesi (B2 rental authorization)",
		},
		"api_fields": []map[string]string{
			{"name": "api_key", "label": "API Key", "type": "password"},
			{"name": "company_code", "label": "Company Code", "type": "text"},
			{"name": "api_url", "label": "API URL", "type": "text", "default": "https://api.kabis.uab.gov.tr/v1"},
		},
		"links": map[string]string{
			"portal":        "https://kabis.uab.gov.tr",
			"documentation": "https://kabis.uab.gov.tr/api-dokumantasyon",
			"support":       "https://kabis.uab.gov.tr/destek",
		},
	}
}
