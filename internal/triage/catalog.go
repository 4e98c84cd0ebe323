package triage

// Disease is one catalog entry: the symptom phrases it presents with and the
// specialty that treats it.
type Disease struct {
	Name      string
	Symptoms  []string
	Specialty string
}

// Catalog lists every disease the symptom classifier is trained on.
var Catalog = []Disease{
	{
		Name:      "Common Cold",
		Symptoms:  []string{"runny nose", "sneezing", "sore throat", "cough", "mild fever", "congestion", "watery eyes", "cold", "stuffy nose", "nasal discharge", "blocked nose", "nose", "sneeze", "running nose", "nasal congestion"},
		Specialty: "General Physician",
	},
	{
		Name:      "Influenza (Flu)",
		Symptoms:  []string{"high fever", "body aches", "fatigue", "chills", "headache", "dry cough", "weakness"},
		Specialty: "General Physician",
	},
	{
		Name:      "COVID-19",
		Symptoms:  []string{"fever", "dry cough", "tiredness", "loss of taste", "loss of smell", "breathing difficulty", "chest pain"},
		Specialty: "Pulmonologist",
	},
	{
		Name:      "Pneumonia",
		Symptoms:  []string{"chest pain", "cough with phlegm", "fever", "shortness of breath", "rapid breathing", "fatigue", "sweating"},
		Specialty: "Pulmonologist",
	},
	{
		Name:      "Bronchitis",
		Symptoms:  []string{"persistent cough", "mucus production", "chest discomfort", "wheezing", "shortness of breath", "mild fever"},
		Specialty: "Pulmonologist",
	},
	{
		Name:      "Asthma",
		Symptoms:  []string{"wheezing", "shortness of breath", "chest tightness", "coughing at night", "difficulty breathing", "rapid breathing"},
		Specialty: "Pulmonologist",
	},
	{
		Name:      "Migraine",
		Symptoms:  []string{"severe headache", "nausea", "sensitivity to light", "sensitivity to sound", "visual disturbances", "throbbing pain"},
		Specialty: "Neurologist",
	},
	{
		Name:      "Tension Headache",
		Symptoms:  []string{"mild to moderate headache", "pressure in forehead", "tight band around head", "neck pain", "shoulder pain"},
		Specialty: "Neurologist",
	},
	{
		Name:      "Gastroenteritis",
		Symptoms:  []string{"diarrhea", "vomiting", "stomach cramps", "nausea", "fever", "abdominal pain", "dehydration"},
		Specialty: "Gastroenterologist",
	},
	{
		Name:      "Acid Reflux (GERD)",
		Symptoms:  []string{"heartburn", "chest pain", "difficulty swallowing", "regurgitation", "sour taste", "burning sensation"},
		Specialty: "Gastroenterologist",
	},
	{
		Name:      "Irritable Bowel Syndrome",
		Symptoms:  []string{"abdominal pain", "bloating", "gas", "diarrhea", "constipation", "cramping", "mucus in stool"},
		Specialty: "Gastroenterologist",
	},
	{
		Name:      "Diabetes Type 2",
		Symptoms:  []string{"increased thirst", "frequent urination", "increased hunger", "fatigue", "blurred vision", "slow healing wounds"},
		Specialty: "Endocrinologist",
	},
	{
		Name:      "Hypothyroidism",
		Symptoms:  []string{"fatigue", "weight gain", "cold sensitivity", "dry skin", "hair loss", "muscle weakness", "depression"},
		Specialty: "Endocrinologist",
	},
	{
		Name:      "Hyperthyroidism",
		Symptoms:  []string{"weight loss", "rapid heartbeat", "increased appetite", "nervousness", "tremors", "sweating", "heat intolerance"},
		Specialty: "Endocrinologist",
	},
	{
		Name:      "Hypertension",
		Symptoms:  []string{"headaches", "dizziness", "nosebleeds", "chest pain", "shortness of breath", "vision problems", "fatigue"},
		Specialty: "Cardiologist",
	},
	{
		Name:      "Coronary Artery Disease",
		Symptoms:  []string{"chest pain", "shortness of breath", "heart palpitations", "weakness", "nausea", "sweating", "jaw pain"},
		Specialty: "Cardiologist",
	},
	{
		Name:      "Arthritis",
		Symptoms:  []string{"joint pain", "stiffness", "swelling", "reduced range of motion", "redness", "warmth in joints", "morning stiffness"},
		Specialty: "Rheumatologist",
	},
	{
		Name:      "Osteoporosis",
		Symptoms:  []string{"back pain", "loss of height", "stooped posture", "bone fractures", "weakness", "bone pain"},
		Specialty: "Orthopedic",
	},
	{
		Name:      "Dermatitis",
		Symptoms:  []string{"itchy skin", "red rash", "dry skin", "blisters", "swelling", "burning sensation", "skin lesions"},
		Specialty: "Dermatologist",
	},
	{
		Name:      "Psoriasis",
		Symptoms:  []string{"red patches", "silvery scales", "dry cracked skin", "itching", "burning", "thick nails", "joint pain"},
		Specialty: "Dermatologist",
	},
	{
		Name:      "Urinary Tract Infection",
		Symptoms:  []string{"burning urination", "frequent urination", "cloudy urine", "strong smelling urine", "pelvic pain", "blood in urine"},
		Specialty: "Urologist",
	},
	{
		Name:      "Kidney Stones",
		Symptoms:  []string{"severe back pain", "side pain", "painful urination", "blood in urine", "nausea", "vomiting", "frequent urination"},
		Specialty: "Nephrologist",
	},
	{
		Name:      "Anemia",
		Symptoms:  []string{"fatigue", "weakness", "pale skin", "shortness of breath", "dizziness", "cold hands", "chest pain", "irregular heartbeat"},
		Specialty: "Hematologist",
	},
	{
		Name:      "Depression",
		Symptoms:  []string{"persistent sadness", "loss of interest", "fatigue", "sleep problems", "appetite changes", "difficulty concentrating", "hopelessness"},
		Specialty: "Psychiatrist",
	},
	{
		Name:      "Anxiety Disorder",
		Symptoms:  []string{"excessive worry", "restlessness", "rapid heartbeat", "sweating", "trembling", "difficulty concentrating", "insomnia"},
		Specialty: "Psychiatrist",
	},
	{
		Name:      "Sinusitis",
		Symptoms:  []string{"facial pain", "nasal congestion", "thick nasal discharge", "reduced sense of smell", "headache", "cough", "fever"},
		Specialty: "ENT Specialist",
	},
	{
		Name:      "Tonsillitis",
		Symptoms:  []string{"sore throat", "difficulty swallowing", "swollen tonsils", "fever", "bad breath", "neck swelling", "tender lymph nodes"},
		Specialty: "ENT Specialist",
	},
	{
		Name:      "Conjunctivitis",
		Symptoms:  []string{"red eyes", "itchy eyes", "discharge", "watery eyes", "burning sensation", "swollen eyelids", "blurred vision"},
		Specialty: "Ophthalmologist",
	},
	{
		Name:      "Glaucoma",
		Symptoms:  []string{"eye pain", "blurred vision", "seeing halos", "redness", "nausea", "vision loss", "headache"},
		Specialty: "Ophthalmologist",
	},
	{
		Name:      "Dengue Fever",
		Symptoms:  []string{"high fever", "severe headache", "pain behind eyes", "joint pain", "muscle pain", "rash", "mild bleeding"},
		Specialty: "General Physician",
	},
	{
		Name:      "Malaria",
		Symptoms:  []string{"fever", "chills", "sweating", "headache", "nausea", "vomiting", "muscle pain", "fatigue"},
		Specialty: "General Physician",
	},
	{
		Name:      "Typhoid",
		Symptoms:  []string{"prolonged fever", "weakness", "stomach pain", "headache", "loss of appetite", "constipation", "rash"},
		Specialty: "General Physician",
	},
	{
		Name:      "Chickenpox",
		Symptoms:  []string{"itchy rash", "blisters", "fever", "tiredness", "loss of appetite", "headache", "red spots"},
		Specialty: "Dermatologist",
	},
	{
		Name:      "Measles",
		Symptoms:  []string{"fever", "cough", "runny nose", "red eyes", "rash", "white spots in mouth", "sore throat"},
		Specialty: "General Physician",
	},
	{
		Name:      "Hepatitis",
		Symptoms:  []string{"jaundice", "fatigue", "abdominal pain", "loss of appetite", "nausea", "dark urine", "pale stool"},
		Specialty: "Hepatologist",
	},
	{
		Name:      "Cirrhosis",
		Symptoms:  []string{"fatigue", "easy bruising", "swelling legs", "yellow skin", "itchy skin", "weight loss", "confusion"},
		Specialty: "Hepatologist",
	},
	{
		Name:      "Appendicitis",
		Symptoms:  []string{"sudden pain right side", "nausea", "vomiting", "loss of appetite", "fever", "constipation", "abdominal swelling"},
		Specialty: "General Surgeon",
	},
	{
		Name:      "Gallstones",
		Symptoms:  []string{"sudden pain upper right abdomen", "back pain", "nausea", "vomiting", "indigestion", "bloating"},
		Specialty: "Gastroenterologist",
	},
	{
		Name:      "Pancreatitis",
		Symptoms:  []string{"upper abdominal pain", "pain radiating to back", "nausea", "vomiting", "fever", "rapid pulse", "tender abdomen"},
		Specialty: "Gastroenterologist",
	},
	{
		Name:      "Vertigo",
		Symptoms:  []string{"spinning sensation", "loss of balance", "nausea", "vomiting", "headache", "sweating", "ringing in ears"},
		Specialty: "ENT Specialist",
	},
	{
		Name:      "Epilepsy",
		Symptoms:  []string{"seizures", "temporary confusion", "staring spell", "uncontrollable jerking", "loss of consciousness", "fear", "anxiety"},
		Specialty: "Neurologist",
	},
	{
		Name:      "Parkinson's Disease",
		Symptoms:  []string{"tremors", "slowed movement", "rigid muscles", "impaired posture", "loss of balance", "speech changes", "writing changes"},
		Specialty: "Neurologist",
	},
	{
		Name:      "Alzheimer's Disease",
		Symptoms:  []string{"memory loss", "difficulty planning", "confusion", "difficulty speaking", "misplacing things", "poor judgment", "mood changes"},
		Specialty: "Neurologist",
	},
	{
		Name:      "Multiple Sclerosis",
		Symptoms:  []string{"numbness", "tingling", "weakness", "vision problems", "dizziness", "fatigue", "difficulty walking"},
		Specialty: "Neurologist",
	},
	{
		Name:      "Chronic Kidney Disease",
		Symptoms:  []string{"fatigue", "swelling", "shortness of breath", "nausea", "confusion", "chest pain", "high blood pressure"},
		Specialty: "Nephrologist",
	},
	{
		Name:      "Lupus",
		Symptoms:  []string{"fatigue", "joint pain", "rash", "fever", "chest pain", "hair loss", "sensitivity to light"},
		Specialty: "Rheumatologist",
	},
	{
		Name:      "Gout",
		Symptoms:  []string{"intense joint pain", "redness", "swelling", "limited range of motion", "tenderness", "warmth"},
		Specialty: "Rheumatologist",
	},
	{
		Name:      "Fibromyalgia",
		Symptoms:  []string{"widespread pain", "fatigue", "sleep problems", "cognitive difficulties", "headaches", "depression", "anxiety"},
		Specialty: "Rheumatologist",
	},
	{
		Name:      "Sleep Apnea",
		Symptoms:  []string{"loud snoring", "gasping during sleep", "morning headache", "excessive daytime sleepiness", "difficulty concentrating", "irritability"},
		Specialty: "Pulmonologist",
	},
	{
		Name:      "Tuberculosis",
		Symptoms:  []string{"persistent cough", "coughing blood", "chest pain", "weight loss", "fever", "night sweats", "fatigue"},
		Specialty: "Pulmonologist",
	},
	{
		Name:      "COPD",
		Symptoms:  []string{"shortness of breath", "chronic cough", "wheezing", "chest tightness", "frequent respiratory infections", "fatigue", "mucus production"},
		Specialty: "Pulmonologist",
	},
}

// DefaultSpecialty is used for diseases without a known specialty.
const DefaultSpecialty = "General Physician"

// SpecialtyMap returns disease name to specialty for the whole catalog.
func SpecialtyMap(catalog []Disease) map[string]string {
	m := make(map[string]string, len(catalog))
	for _, d := range catalog {
		m[d.Name] = d.Specialty
	}
	return m
}
