package i18n

type Key string

const (
	KeyAppName              Key = "appName"
	KeyWelcomeMessage       Key = "welcomeMessage"
	KeyWelcomeBack          Key = "welcomeBack"
	KeyInstructions         Key = "instructions"
	KeyAskName              Key = "askName"
	KeyAskAge               Key = "askAge"
	KeyAskPhone             Key = "askPhone"
	KeyAskLocation          Key = "askLocation"
	KeyThanksPatientDetails Key = "thanksPatientDetails"
	KeyProcessingVoice      Key = "processingVoice"
	KeyError                Key = "error"
	KeyAIError              Key = "aiError"
	KeyVoiceError           Key = "voiceError"
	KeyPrescriptionError    Key = "prescriptionError"
	KeyMicError             Key = "micError"
	KeyMicErrorDescription  Key = "micErrorDescription"
	KeyLocationError        Key = "locationError"
	KeyLocationErrorDesc    Key = "locationErrorDescription"
	KeyNoDiagnosis          Key = "noDiagnosis"
	KeyPrescriptionTitle    Key = "prescriptionTitle"
	KeyPatientName          Key = "patientName"
	KeyPatientAge           Key = "patientAge"
	KeyPatientPhone         Key = "patientPhone"
	KeyDate                 Key = "date"
	KeyDiagnosisTitle       Key = "diagnosisTitle"
	KeyMedicinesTitle       Key = "medicinesTitle"
	KeyInstructionsTitle    Key = "instructionsTitle"
	KeyDisclaimer           Key = "disclaimer"
)

var translations = map[string]map[Key]string{
	"en-US": {
		KeyAppName:              "MediChat",
		KeyWelcomeMessage:       "Hello! I am your health assistant. I will ask a few questions before we talk about your symptoms.",
		KeyWelcomeBack:          "Welcome back, {name}! How are you feeling today? Describe your symptoms and I will help.",
		KeyInstructions:         "Type or speak your symptoms. You can attach a photo of a visible symptom. After a diagnosis you can create a prescription or find hospitals near you.",
		KeyAskName:              "What is your name?",
		KeyAskAge:               "How old are you?",
		KeyAskPhone:             "What is your phone number?",
		KeyAskLocation:          "Where do you live? Your city or area is enough.",
		KeyThanksPatientDetails: "Thank you, {name}. Please describe your symptoms now.",
		KeyProcessingVoice:      "Processing voice message...",
		KeyError:                "Error",
		KeyAIError:              "Sorry, I could not analyse your symptoms. Please try again.",
		KeyVoiceError:           "Sorry, I could not process your voice message. Please try again.",
		KeyPrescriptionError:    "Sorry, the prescription could not be generated. Please try again.",
		KeyMicError:             "Microphone unavailable",
		KeyMicErrorDescription:  "Please allow microphone access to record a voice message.",
		KeyLocationError:        "Location unavailable",
		KeyLocationErrorDesc:    "Results may be less relevant without your location.",
		KeyNoDiagnosis:          "No diagnosis found.",
		KeyPrescriptionTitle:    "Prescription",
		KeyPatientName:          "Name",
		KeyPatientAge:           "Age",
		KeyPatientPhone:         "Phone",
		KeyDate:                 "Date",
		KeyDiagnosisTitle:       "Diagnosis",
		KeyMedicinesTitle:       "Medicines",
		KeyInstructionsTitle:    "Instructions",
		KeyDisclaimer:           "This prescription is AI generated. Consult a doctor before taking any medicine.",
	},
	"hi-IN": {
		KeyWelcomeMessage:       "नमस्ते! मैं आपका स्वास्थ्य सहायक हूँ। आपके लक्षणों के बारे में बात करने से पहले मैं कुछ प्रश्न पूछूँगा।",
		KeyWelcomeBack:          "फिर से स्वागत है, {name}! आज आप कैसा महसूस कर रहे हैं? अपने लक्षण बताइए।",
		KeyInstructions:         "अपने लक्षण लिखें या बोलें। आप किसी दिखाई देने वाले लक्षण की फ़ोटो भी जोड़ सकते हैं।",
		KeyAskName:              "आपका नाम क्या है?",
		KeyAskAge:               "आपकी उम्र क्या है?",
		KeyAskPhone:             "आपका फ़ोन नंबर क्या है?",
		KeyAskLocation:          "आप कहाँ रहते हैं? शहर या इलाका काफ़ी है।",
		KeyThanksPatientDetails: "धन्यवाद, {name}। अब कृपया अपने लक्षण बताइए।",
		KeyProcessingVoice:      "आवाज़ संदेश संसाधित हो रहा है...",
		KeyError:                "त्रुटि",
		KeyAIError:              "क्षमा करें, मैं आपके लक्षणों का विश्लेषण नहीं कर सका। कृपया फिर से प्रयास करें।",
		KeyVoiceError:           "क्षमा करें, आपका आवाज़ संदेश संसाधित नहीं हो सका। कृपया फिर से प्रयास करें।",
		KeyPrescriptionError:    "क्षमा करें, पर्चा नहीं बन सका। कृपया फिर से प्रयास करें।",
		KeyPrescriptionTitle:    "पर्चा",
		KeyPatientName:          "नाम",
		KeyPatientAge:           "उम्र",
		KeyPatientPhone:         "फ़ोन",
		KeyDate:                 "दिनांक",
		KeyDiagnosisTitle:       "निदान",
		KeyMedicinesTitle:       "दवाइयाँ",
		KeyInstructionsTitle:    "निर्देश",
		KeyDisclaimer:           "यह पर्चा एआई द्वारा बनाया गया है। कोई भी दवा लेने से पहले डॉक्टर से सलाह लें।",
	},
	"mr-IN": {
		KeyWelcomeMessage:       "नमस्कार! मी तुमचा आरोग्य सहाय्यक आहे. तुमच्या लक्षणांबद्दल बोलण्यापूर्वी मी काही प्रश्न विचारेन.",
		KeyWelcomeBack:          "पुन्हा स्वागत आहे, {name}! आज तुम्हाला कसे वाटत आहे? तुमची लक्षणे सांगा.",
		KeyAskName:              "तुमचे नाव काय आहे?",
		KeyAskAge:               "तुमचे वय किती आहे?",
		KeyAskPhone:             "तुमचा फोन नंबर काय आहे?",
		KeyAskLocation:          "तुम्ही कुठे राहता? शहर किंवा परिसर पुरेसा आहे.",
		KeyThanksPatientDetails: "धन्यवाद, {name}. आता कृपया तुमची लक्षणे सांगा.",
		KeyProcessingVoice:      "आवाज संदेशावर प्रक्रिया सुरू आहे...",
		KeyError:                "त्रुटी",
		KeyAIError:              "क्षमस्व, तुमच्या लक्षणांचे विश्लेषण करता आले नाही. कृपया पुन्हा प्रयत्न करा.",
		KeyVoiceError:           "क्षमस्व, तुमचा आवाज संदेश प्रक्रिया करता आला नाही. कृपया पुन्हा प्रयत्न करा.",
		KeyPrescriptionTitle:    "प्रिस्क्रिप्शन",
		KeyPatientName:          "नाव",
		KeyPatientAge:           "वय",
		KeyPatientPhone:         "फोन",
		KeyDate:                 "दिनांक",
		KeyDiagnosisTitle:       "निदान",
		KeyMedicinesTitle:       "औषधे",
		KeyInstructionsTitle:    "सूचना",
	},
	"ta-IN": {
		KeyWelcomeMessage:       "வணக்கம்! நான் உங்கள் சுகாதார உதவியாளர். உங்கள் அறிகுறிகளைப் பற்றி பேசுவதற்கு முன் சில கேள்விகள் கேட்பேன்.",
		KeyWelcomeBack:          "மீண்டும் வருக, {name}! இன்று எப்படி உணர்கிறீர்கள்? உங்கள் அறிகுறிகளைச் சொல்லுங்கள்.",
		KeyAskName:              "உங்கள் பெயர் என்ன?",
		KeyAskAge:               "உங்கள் வயது என்ன?",
		KeyAskPhone:             "உங்கள் தொலைபேசி எண் என்ன?",
		KeyAskLocation:          "நீங்கள் எங்கு வசிக்கிறீர்கள்? நகரம் அல்லது பகுதி போதும்.",
		KeyThanksPatientDetails: "நன்றி, {name}. இப்போது உங்கள் அறிகுறிகளை விவரிக்கவும்.",
		KeyProcessingVoice:      "குரல் செய்தி செயலாக்கப்படுகிறது...",
		KeyError:                "பிழை",
		KeyAIError:              "மன்னிக்கவும், உங்கள் அறிகுறிகளை பகுப்பாய்வு செய்ய முடியவில்லை. மீண்டும் முயற்சிக்கவும்.",
		KeyPrescriptionTitle:    "மருந்துச் சீட்டு",
		KeyDiagnosisTitle:       "நோயறிதல்",
		KeyMedicinesTitle:       "மருந்துகள்",
		KeyInstructionsTitle:    "வழிமுறைகள்",
	},
	"bn-IN": {
		KeyWelcomeMessage:       "নমস্কার! আমি আপনার স্বাস্থ্য সহকারী। আপনার উপসর্গ নিয়ে কথা বলার আগে আমি কয়েকটি প্রশ্ন করব।",
		KeyWelcomeBack:          "আবার স্বাগতম, {name}! আজ কেমন বোধ করছেন? আপনার উপসর্গগুলি বলুন।",
		KeyAskName:              "আপনার নাম কী?",
		KeyAskAge:               "আপনার বয়স কত?",
		KeyAskPhone:             "আপনার ফোন নম্বর কী?",
		KeyAskLocation:          "আপনি কোথায় থাকেন? শহর বা এলাকা বললেই হবে।",
		KeyThanksPatientDetails: "ধন্যবাদ, {name}। এখন আপনার উপসর্গগুলি বর্ণনা করুন।",
		KeyProcessingVoice:      "ভয়েস বার্তা প্রক্রিয়া করা হচ্ছে...",
		KeyError:                "ত্রুটি",
		KeyPrescriptionTitle:    "প্রেসক্রিপশন",
		KeyDiagnosisTitle:       "রোগনির্ণয়",
		KeyMedicinesTitle:       "ওষুধ",
		KeyInstructionsTitle:    "নির্দেশাবলী",
	},
}
