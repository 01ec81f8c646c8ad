// Package assistant maps free-text symptom descriptions to a specialist recommendation by
// keyword matching.
package assistant

import (
	"slices"
	"strings"
)

type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

type Condition struct {
	Symptoms    []string
	Specialist  string
	Urgency     Urgency
	Description string
	Advice      string
}

type Recommendation struct {
	Specialist     string  `json:"specialist"`
	Urgency        Urgency `json:"urgency"`
	Description    string  `json:"description"`
	Advice         string  `json:"advice,omitempty"`
	MatchedKeyword string  `json:"matchedKeyword,omitempty"`
}

var emergencyKeywords = []string{
	"emergency",
	"urgent",
	"severe",
	"sudden",
	"intense",
	"can't breathe",
	"cannot breathe",
	"unconscious",
}

// Order matters: the first condition with a matching keyword wins.
var conditions = []Condition{
	{
		Symptoms:    []string{"chest pain", "heart attack", "heart palpitations", "irregular heartbeat", "cardiac", "heart"},
		Specialist:  "Cardiology",
		Urgency:     UrgencyHigh,
		Description: "Heart and cardiovascular system specialist",
		Advice:      "If you are experiencing severe chest pain, seek emergency care immediately.",
	},
	{
		Symptoms:    []string{"stomach", "digestive", "nausea", "vomiting", "diarrhea", "constipation", "gastro", "abdominal pain"},
		Specialist:  "Gastroenterology",
		Urgency:     UrgencyMedium,
		Description: "Digestive system specialist",
	},
	{
		Symptoms:    []string{"bone", "joint", "fracture", "back pain", "knee pain", "arthritis", "sports injury", "muscle pain"},
		Specialist:  "Orthopedics",
		Urgency:     UrgencyMedium,
		Description: "Bone, joint, and musculoskeletal specialist",
	},
	{
		Symptoms:    []string{"child", "pediatric", "baby", "infant", "vaccination", "growth", "kids"},
		Specialist:  "Pediatrics",
		Urgency:     UrgencyMedium,
		Description: "Children's health specialist",
	},
	{
		Symptoms:    []string{"cancer", "tumor", "oncology", "chemotherapy", "radiation"},
		Specialist:  "Oncology",
		Urgency:     UrgencyHigh,
		Description: "Cancer treatment specialist",
	},
	{
		Symptoms:    []string{"mental health", "depression", "anxiety", "stress", "psychological", "mood", "counseling"},
		Specialist:  "Counselling",
		Urgency:     UrgencyMedium,
		Description: "Mental health and psychological disorders specialist",
	},
	{
		Symptoms:    []string{"nutrition", "diet", "weight loss", "eating disorder", "obesity", "malnutrition"},
		Specialist:  "Nutrition & Dietetics",
		Urgency:     UrgencyLow,
		Description: "Nutrition and dietary specialist",
	},
	{
		Symptoms:    []string{"internal medicine", "diabetes", "hypertension", "chronic disease", "adult medicine"},
		Specialist:  "Internal Medicine",
		Urgency:     UrgencyMedium,
		Description: "Internal medicine specialist for adult health",
	},
	{
		Symptoms:    []string{"fever", "cold", "flu", "general illness", "checkup", "routine", "primary care"},
		Specialist:  "General Practitioner",
		Urgency:     UrgencyLow,
		Description: "Primary care physician for general health concerns",
	},
	{
		Symptoms:    []string{"ear", "hearing", "throat", "nose", "sinus", "tonsils", "ent"},
		Specialist:  "Otolaryngology",
		Urgency:     UrgencyMedium,
		Description: "Ear, Nose, and Throat specialist",
	},
	{
		Symptoms:    []string{"thyroid", "hormone", "endocrine", "metabolism"},
		Specialist:  "Endocrinology",
		Urgency:     UrgencyMedium,
		Description: "Hormone and metabolic disorders specialist",
	},
	{
		Symptoms:    []string{"kidney", "urinary", "bladder", "urology", "prostate"},
		Specialist:  "Urology",
		Urgency:     UrgencyMedium,
		Description: "Urinary system and male reproductive system specialist",
	},
	{
		Symptoms:    []string{"pregnancy", "gynecology", "women health", "menstrual", "reproductive health", "obstetrics"},
		Specialist:  "Obstetrics & Gynecology",
		Urgency:     UrgencyMedium,
		Description: "Women's reproductive health specialist",
	},
	{
		Symptoms:    []string{"speech", "communication disorder", "language delay", "stuttering", "voice problems"},
		Specialist:  "Speech Therapy",
		Urgency:     UrgencyLow,
		Description: "Speech and communication disorders specialist",
	},
	{
		Symptoms:    []string{"family medicine", "preventive care", "health maintenance", "routine check"},
		Specialist:  "Family Medicine",
		Urgency:     UrgencyLow,
		Description: "Comprehensive care for individuals and families",
	},
}

var emergency = Recommendation{
	Specialist:  "Emergency Care",
	Urgency:     UrgencyEmergency,
	Description: "Your description suggests a medical emergency",
	Advice:      "Call emergency services or go to the nearest emergency department now.",
}

var generic = Recommendation{
	Specialist:  "General Practitioner",
	Urgency:     UrgencyLow,
	Description: "A general practitioner can assess your symptoms and refer you to a specialist",
}

// Recommend picks a specialist for the symptoms described in text.
func Recommend(text string) Recommendation {
	input := strings.ToLower(text)

	if i := slices.IndexFunc(emergencyKeywords, func(k string) bool { return strings.Contains(input, k) }); i >= 0 {
		r := emergency
		r.MatchedKeyword = emergencyKeywords[i]
		return r
	}

	for _, c := range conditions {
		for _, symptom := range c.Symptoms {
			if containsWord(input, symptom) {
				return Recommendation{
					Specialist:     c.Specialist,
					Urgency:        c.Urgency,
					Description:    c.Description,
					Advice:         c.Advice,
					MatchedKeyword: symptom,
				}
			}
		}
	}

	return generic
}

// Specialists lists every specialist Recommend can return, in match order.
func Specialists() []string {
	out := make([]string, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, c.Specialist)
	}
	return out
}

// containsWord matches keyword only at word boundaries, so "ear" does not fire on "heart".
func containsWord(input, keyword string) bool {
	for start := 0; start < len(input); {
		i := strings.Index(input[start:], keyword)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(keyword)
		if (i == 0 || !isLetter(input[i-1])) && (end == len(input) || !isLetter(input[end])) {
			return true
		}
		start = i + 1
	}
	return false
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
