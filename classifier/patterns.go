package classifier

// These pattern sets define query classification behavior and are tuned to
// match the phrasing users actually type. The "comparison" set additionally
// carries `\bjanuary\b.*\bvs\b` to catch explicit month-name comparisons.

var simplePatterns = []string{
	`^what\s+did\s+i\s+do\s+(?:today|yesterday|this\s+week)\??$`,
	`^(?:tell\s+me\s+)?about\s+\w+\??$`,
	`^what\s+(?:apps?|sites?|topics?)\b`,
	`^(?:most|top)\s+\w+\s+(?:apps?|sites?|topics?|artists?)\b`,
	`^summary\s+of\s+(?:today|yesterday|this\s+week)\b`,
}

var relationshipPatterns = []string{
	`\bwhile\b.*\bwhat\b`,
	`\bwhen\b.*\bwhat\b`,
	`\bduring\b.*\bwhat\b`,
	`\balongside\b`,
	`\btogether with\b`,
	`\bat the same time\b`,
	`\blistening to\b.*\bwhile\b`,
	`\bwatching\b.*\bwhile\b`,
	`\bwhat.*\bwhen\b.*\bwas\b`,
}

var comparisonPatterns = []string{
	`\bcompare\b`,
	`\bvs\b|\bversus\b`,
	`\bdifference between\b`,
	`\bchanged over\b`,
	`\bhow\b.*\bchanged\b`,
	`\bfrom\b.*\bto\b.*\bperiod\b`,
	`\blast\s+(?:week|month|year)\b.*\bthis\s+(?:week|month|year)\b`,
	`\bjanuary\b.*\bvs\b`,
}

var memoryRecallPatterns = []string{
	`\bi remember\b`,
	`\bthere was\b.*\babout\b`,
	`\bsomething about\b`,
	`\bwhat was it\b`,
	`\bwhat did i learn\b`,
	`\bcan't recall\b`,
	`\btrying to remember\b`,
	`\bwhat was the\b.*\bthat\b`,
}

var correlationPatterns = []string{
	`\bpattern\b`,
	`\busually\b`,
	`\btend to\b`,
	`\bafter\b.*\bdo i\b`,
	`\bbefore\b.*\bdo i\b`,
	`\btypically\b`,
	`\bwhat do i (?:usually|typically)\b`,
	`\bis there a (?:pattern|correlation)\b`,
	`\bhow often\b`,
}

var webAugmentedPatterns = []string{
	`\blatest\b`,
	`\bcurrent\b.*\b(?:news|events|developments)\b`,
	`\brecent news\b`,
	`\bsince then\b`,
	`\bdevelopments\b`,
	`\bwhat (?:is|are) the (?:latest|current)\b`,
	`\bwhat happened\b.*\bworld\b`,
	`\bconnect\b.*\bwith current\b`,
}

var multiEntityPatterns = []string{
	`\bboth\b.*\band\b`,
	`\brelationship between\b`,
	`\bhow are\b.*\brelated\b`,
	`\bconnection between\b`,
	`\w+ and \w+ (?:together|related)`,
}
