package pool

import (
	"encoding/json"

	"studyquiz-service/internal/models"
	"studyquiz-service/internal/normalize"
)

func ans(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// defaultBank is the built-in static corpus, partitioned by exam track. The
// answer encodings are deliberately mixed (index, letter, text) because the
// bank accumulated records from several generations of authoring tools; the
// normalizer must handle all of them.
var defaultBank = map[string][]models.RawQuestion{
	"sayisal": {
		{Q: "What is the derivative of x^2?", O: []string{"x", "2x", "x^2", "2"}, Answer: ans(1), Subject: "matematik", Difficulty: "easy"},
		{Q: "What is the value of 7 * 8?", O: []string{"54", "56", "58", "64"}, Answer: ans("B"), Subject: "matematik", Difficulty: "easy"},
		{Q: "Which number is prime?", O: []string{"21", "33", "37", "39"}, Answer: ans("37"), Subject: "matematik"},
		{Q: "What is the integral of 1/x dx?", O: []string{"ln|x| + C", "x^2/2 + C", "1/x^2 + C", "e^x + C"}, Answer: ans(0), Subject: "matematik", Difficulty: "hard"},
		{Q: "What is the SI unit of force?", O: []string{"Joule", "Watt", "Newton", "Pascal"}, Answer: ans("C"), Subject: "fizik", Difficulty: "easy"},
		{Q: "Which quantity is a vector?", O: []string{"Mass", "Speed", "Velocity", "Energy"}, Answer: ans("Velocity"), Subject: "fizik"},
		{Q: "Light travels fastest in which medium?", O: []string{"Water", "Glass", "Vacuum", "Air"}, Answer: ans(2), Subject: "fizik"},
		{Q: "What is the chemical symbol of sodium?", O: []string{"So", "Sd", "Na", "N"}, Answer: ans("Na"), Subject: "kimya", Difficulty: "easy"},
		{Q: "What is the pH of a neutral solution at 25°C?", O: []string{"0", "7", "14", "1"}, Answer: ans("B"), Subject: "kimya"},
		{Q: "Which bond involves shared electron pairs?", O: []string{"Ionic", "Covalent", "Metallic", "Hydrogen"}, Answer: ans(1), Subject: "kimya", Difficulty: "hard"},
		{Q: "Which organelle produces ATP?", O: []string{"Nucleus", "Ribosome", "Mitochondrion", "Golgi"}, Answer: ans("C) Mitochondrion"), Subject: "biyoloji"},
		{Q: "DNA replication is described as:", O: []string{"Conservative", "Semi-conservative", "Dispersive", "Random"}, Answer: ans(1), Subject: "biyoloji", Difficulty: "hard"},
	},
	"sozel": {
		{Q: "Which of these is a synonym of 'abundant'?", O: []string{"Scarce", "Plentiful", "Hollow", "Rigid"}, Answer: ans("Plentiful"), Subject: "turkce", Difficulty: "easy"},
		{Q: "A sentence's subject answers which question?", O: []string{"When", "Who or what", "Why", "How"}, Answer: ans(1), Subject: "turkce"},
		{Q: "Which is the correct narrative order?", O: []string{"Conclusion-intro-body", "Intro-body-conclusion", "Body-conclusion-intro", "Random"}, Answer: ans("B"), Subject: "turkce"},
		{Q: "In which year did the Republic of Turkey get founded?", O: []string{"1920", "1921", "1923", "1938"}, Answer: ans("1923"), Subject: "tarih", Difficulty: "easy"},
		{Q: "The printing press reached the Ottoman Empire in which century?", O: []string{"15th", "16th", "18th", "20th"}, Answer: ans(2), Subject: "tarih", Difficulty: "hard"},
		{Q: "Which war ended with the Treaty of Lausanne?", O: []string{"World War I", "Turkish War of Independence", "Balkan Wars", "Crimean War"}, Answer: ans("B"), Subject: "tarih"},
		{Q: "Which is the longest river entirely within Turkey?", O: []string{"Euphrates", "Tigris", "Kizilirmak", "Sakarya"}, Answer: ans("Kizilirmak"), Subject: "cografya"},
		{Q: "Which climate dominates the Black Sea coast?", O: []string{"Continental", "Oceanic", "Mediterranean", "Desert"}, Answer: ans(1), Subject: "cografya"},
		{Q: "Who wrote 'Critique of Pure Reason'?", O: []string{"Hume", "Kant", "Hegel", "Descartes"}, Answer: ans("B"), Subject: "felsefe", Difficulty: "hard"},
	},
	"esit-agirlik": {
		{Q: "If 3x - 6 = 9, what is x?", O: []string{"3", "4", "5", "6"}, Answer: ans("5"), Subject: "matematik", Difficulty: "easy"},
		{Q: "What is 15% of 200?", O: []string{"20", "25", "30", "35"}, Answer: ans(2), Subject: "matematik"},
		{Q: "Which punctuation ends an interrogative sentence?", O: []string{"Period", "Comma", "Question mark", "Colon"}, Answer: ans("C"), Subject: "turkce", Difficulty: "easy"},
		{Q: "The Ottoman Empire was founded around which year?", O: []string{"1071", "1299", "1453", "1520"}, Answer: ans("1299"), Subject: "tarih"},
	},
	"dil": {
		{Q: "Choose the correct form: 'She ___ to school every day.'", O: []string{"go", "goes", "going", "gone"}, Answer: ans(1), Subject: "ingilizce", Difficulty: "easy"},
		{Q: "'Bibliothek' is the German word for:", O: []string{"Bookstore", "Library", "Bible", "Study"}, Answer: ans("Library"), Subject: "almanca"},
		{Q: "Which tense describes a finished past action in English?", O: []string{"Present simple", "Past simple", "Future", "Present continuous"}, Answer: ans("B"), Subject: "ingilizce"},
		{Q: "What does the French word 'fenêtre' mean?", O: []string{"Door", "Wall", "Window", "Roof"}, Answer: ans(2), Subject: "fransizca"},
	},
	DefaultField: {
		{Q: "How many continents are there?", O: []string{"5", "6", "7", "8"}, Answer: ans("7"), Subject: "genel-kultur", Difficulty: "easy"},
		{Q: "Which planet is known as the Red Planet?", O: []string{"Venus", "Mars", "Jupiter", "Mercury"}, Answer: ans(1), Subject: "genel-kultur", Difficulty: "easy"},
		{Q: "What is the capital of France?", O: []string{"Paris", "Lyon", "Marseille", "Nice"}, Answer: ans("A"), Subject: "genel-kultur"},
		{Q: "Who painted the Mona Lisa?", O: []string{"Michelangelo", "Raphael", "Da Vinci", "Donatello"}, Answer: ans("Da Vinci"), Subject: "genel-kultur"},
	},
}

// SeedDefaultBank loads the built-in corpus into the provider through the
// normalizer, like every other producer. Returns loaded and skipped counts.
func SeedDefaultBank(p *Provider) (int, int) {
	loaded, skipped := 0, 0
	for field, raws := range defaultBank {
		questions, s := normalize.Batch(raws, models.OriginBank)
		// Synthesized ids restart at q_1 per batch; prefix with the field
		// key so ids stay unique when assessment padding mixes partitions.
		for i := range questions {
			questions[i].ID = field + "-" + questions[i].ID
		}
		p.Ingest(field, questions)
		loaded += len(questions)
		skipped += s
	}
	return loaded, skipped
}
