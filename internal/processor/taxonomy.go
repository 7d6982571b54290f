package processor

import "strings"

// Topic 一个医疗 AI 子方向及其触发关键词（小写，子串匹配）
type Topic struct {
	Name     string
	Keywords []string
}

// taxonomy 固定的 10 个主题，进程内只读
var taxonomy = []Topic{
	{"Medical Imaging", []string{"imaging", "radiology", "x-ray", "mri", "ct scan", "ultrasound", "image segmentation", "image classification"}},
	{"NLP in Healthcare", []string{"nlp", "natural language", "text mining", "medical notes", "clinical notes", "documentation", "medical language"}},
	{"Clinical Decision Support", []string{"clinical decision", "decision support", "cdss", "clinical workflow", "physician", "doctor", "nurse", "medical decision"}},
	{"Drug Discovery", []string{"drug discovery", "pharmaceutical", "molecule", "compound", "drug design", "medicinal chemistry", "therapeutics"}},
	{"Predictive Analytics", []string{"predict", "forecasting", "risk prediction", "outcome prediction", "patient outcome", "mortality prediction", "readmission"}},
	{"Disease Diagnosis", []string{"diagnosis", "diagnostic", "detection", "screening", "early detection", "disease classification", "pathology"}},
	{"Electronic Health Records", []string{"ehr", "emr", "electronic health record", "electronic medical record", "health record", "patient record"}},
	{"Personalized Medicine", []string{"personalized", "precision medicine", "patient-specific", "tailored", "individualized care", "custom treatment"}},
	{"Patient Monitoring", []string{"monitoring", "wearable", "sensor", "remote monitoring", "patient tracking", "vital signs", "telehealth"}},
	{"Genomics", []string{"genomic", "gene", "genetic", "dna", "rna", "sequencing", "genome", "biomarker"}},
}

// TopicNames 按固定顺序返回主题名称
func TopicNames() []string {
	names := make([]string, len(taxonomy))
	for i, t := range taxonomy {
		names[i] = t.Name
	}
	return names
}

// Keywords 返回某主题关键词的副本，未知主题返回 nil
func Keywords(topic string) []string {
	for _, t := range taxonomy {
		if t.Name == topic {
			return append([]string(nil), t.Keywords...)
		}
	}
	return nil
}

// Classify 对 "标题 描述" 做大小写无关的子串匹配，每个主题都有一个键。
// 不做词边界判断，例如 "rna" 也会命中 "journal"。
func Classify(title, description string) map[string]bool {
	text := strings.ToLower(title + " " + description)
	out := make(map[string]bool, len(taxonomy))
	for _, t := range taxonomy {
		hit := false
		for _, kw := range t.Keywords {
			if strings.Contains(text, kw) {
				hit = true
				break
			}
		}
		out[t.Name] = hit
	}
	return out
}
