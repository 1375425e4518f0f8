package prompts

import "fmt"

func orAny(v, what string) string {
	if v == "" {
		return "any " + what
	}
	return v
}

func SuggestCompanies(query string) string {
	return fmt.Sprintf("Based on the query '%s', suggest 10 relevant company names from around the world. "+
		"Include tech companies, startups, and well-known corporations. "+
		"Return ONLY a JSON array of company names, nothing else. "+
		`Format: ["Company1", "Company2", ...]`, query)
}

func SuggestRoles(query, company string) string {
	return fmt.Sprintf("Based on the query '%s' for company '%s', suggest 10 relevant job roles. "+
		"Include technical roles, management roles, and entry-level positions. "+
		"Return ONLY a JSON array of role names, nothing else. "+
		`Format: ["Role1", "Role2", ...]`, query, orAny(company, "company"))
}

func SuggestPositions(role, company string) string {
	return fmt.Sprintf("Based on the role '%s' at company '%s', suggest 10 specific job positions/titles. "+
		"Include variations with different seniority levels (Junior, Senior, Lead, etc.). "+
		"Return ONLY a JSON array of position titles, nothing else. "+
		`Format: ["Position1", "Position2", ...]`, orAny(role, "role"), orAny(company, "company"))
}
