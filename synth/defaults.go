package synth

// DefaultAcronyms returns the built-in acronym corrections applied to
// derived words.
func DefaultAcronyms() map[string]string {
	return map[string]string{
		// Currencies
		"Usd": "USD", "Eur": "EUR", "Sar": "SAR", "Aed": "AED",
		"Egp": "EGP", "Kwd": "KWD", "Qar": "QAR", "Bhd": "BHD",
		"Omr": "OMR", "Jod": "JOD", "Lbp": "LBP", "Iqd": "IQD",

		"Bmi": "BMI", "Gpa": "GPA", "Api": "API", "Roi": "ROI",
		"Vat": "VAT", "Ev": "EV", "Ac": "AC", "Dc": "DC",
		"Hp": "HP", "Rpm": "RPM", "Kw": "kW", "Kwh": "kWh",
		"Mph": "mph", "Kmh": "km/h", "Psi": "PSI", "Gpm": "GPM",
		"Cfm": "CFM", "Btu": "BTU", "Hvac": "HVAC", "Led": "LED",
		"Noi": "NOI", "Apr": "APR", "Apy": "APY", "Dti": "DTI",
		"Ltv": "LTV", "Fba": "FBA", "Bmr": "BMR", "Tdee": "TDEE",
	}
}

// DefaultGlossary returns the built-in English to Arabic glossary.
func DefaultGlossary() map[string]string {
	return map[string]string{
		// Common UI
		"Calculate": "احسب", "Calculator": "حاسبة", "Result": "النتيجة",
		"Results": "النتائج", "Total": "الإجمالي", "Amount": "المبلغ",
		"Value": "القيمة", "Price": "السعر", "Cost": "التكلفة",
		"Rate": "المعدل", "Percentage": "النسبة المئوية",
		"Enter": "أدخل", "Input": "إدخال", "Output": "الإخراج",

		// Inheritance
		"Husband": "الزوج", "Wife": "الزوجة", "Son": "الابن",
		"Daughter": "الابنة", "Grandson": "الحفيد", "Granddaughter": "الحفيدة",
		"Father": "الأب", "Mother": "الأم", "Grandfather": "الجد",
		"Grandmother Paternal": "الجدة من جهة الأب",
		"Grandmother Maternal": "الجدة من جهة الأم",
		"Brother": "الأخ", "Sister": "الأخت",
		"Brother Paternal": "الأخ الشقيق",
		"Sister Paternal":  "الأخت الشقيقة",
		"Brother Maternal": "الأخ من الأم",
		"Sister Maternal":  "الأخت من الأم",
		"Heirs": "الورثة", "Estate": "التركة", "Debts": "الديون",
		"Wasiyyah": "الوصية", "Net Estate": "صافي التركة",
		"Distribution": "التوزيع", "Share": "الحصة",
		"Inheritance": "الميراث",

		// Automotive
		"Lease": "الإيجار", "Buy": "الشراء", "Vs": "مقابل",
		"Down Payment": "الدفعة الأولى", "Monthly Payment": "الدفعة الشهرية",
		"Interest Rate": "معدل الفائدة", "Term": "المدة",
		"Residual Value": "القيمة المتبقية", "Purchase Price": "سعر الشراء",
		"Maintenance": "الصيانة", "Fuel": "الوقود", "Insurance": "التأمين",
		"Carbon": "الكربون", "Emissions": "الانبعاثات",
		"Stopping Distance": "مسافة التوقف", "Speed": "السرعة",
		"Ev Charging": "شحن السيارة الكهربائية",
		"Travel Time": "وقت السفر", "Distance": "المسافة",

		// Construction
		"Paint": "الطلاء", "Deck": "السطح", "Pipe": "الأنبوب",
		"Labor Cost": "تكلفة العمالة", "Wallpaper": "ورق الجدران",
		"Tile": "البلاط", "Ceiling": "السقف", "Excavation": "الحفر",
		"Roofing": "التسقيف", "Door": "الباب", "Grout": "الجص",
		"Lumber": "الخشب", "Fill Dirt": "تراب التعبئة",
		"Rebar": "حديد التسليح", "Conduit": "المجرى",
		"Flooring": "الأرضيات", "Insulation": "العزل",
		"Landscaping": "تنسيق الحدائق", "Shingle": "القرميد",
		"Concrete": "الخرسانة", "Drywall": "الجدران الجافة",
		"Foundation": "الأساس", "Waterproofing": "العزل المائي",

		// Business
		"Amazon Fba": "أمازون FBA", "Ebay Fees": "رسوم إيباي",
		"Profit": "الربح", "Revenue": "الإيرادات", "Margin": "الهامش",
		"Commission": "العمولة", "Referral Fee": "رسوم الإحالة",
		"Fulfillment": "التنفيذ", "Storage": "التخزين",
		"Inventory": "المخزون", "Roi": "العائد على الاستثمار",

		// Electrical
		"Ohms Law": "قانون أوم", "Voltage": "الجهد",
		"Current": "التيار", "Resistance": "المقاومة",
		"Power": "القدرة", "Circuit": "الدائرة",
		"Wiring": "الأسلاك", "Motor": "المحرك",

		// Units
		"Feet": "قدم", "Inches": "بوصة", "Meters": "متر",
		"Centimeters": "سنتيمتر", "Yards": "ياردة",
		"Square Feet": "قدم مربع", "Square Meters": "متر مربع",
		"Cubic Feet": "قدم مكعب", "Cubic Meters": "متر مكعب",
		"Gallons": "جالونات", "Liters": "لتر", "Pounds": "رطل",
		"Kilograms": "كيلوجرام", "Tons": "طن",

		// Dimensions and properties
		"Width": "العرض", "Height": "الارتفاع", "Length": "الطول",
		"Depth": "العمق", "Area": "المساحة", "Volume": "الحجم",
		"Weight": "الوزن", "Thickness": "السمك", "Diameter": "القطر",
		"Radius": "نصف القطر", "Quantity": "الكمية", "Count": "العدد",
		"Number": "الرقم", "Size": "الحجم", "Type": "النوع",
		"Category": "الفئة", "Name": "الاسم", "Description": "الوصف",
		"Title": "العنوان", "Label": "التسمية",
		"Material": "المادة", "Materials": "المواد",
		"Needed": "المطلوبة", "Required": "مطلوب", "Optional": "اختياري",
		"Coverage": "التغطية", "Waste": "الهدر",
		"Labor": "العمالة", "Hours": "ساعات",
		"Workers": "عمال", "Cost Per": "التكلفة لكل",

		// Time
		"Date": "التاريخ", "Time": "الوقت", "Year": "السنة",
		"Month": "الشهر", "Day": "اليوم", "Hour": "الساعة",
		"Minute": "الدقيقة", "Second": "الثانية", "Duration": "المدة",
		"Period": "الفترة", "Interval": "الفاصل الزمني",

		// Actions
		"Reset": "إعادة تعيين", "Clear": "مسح", "Save": "حفظ",
		"Copy": "نسخ", "Submit": "إرسال", "Cancel": "إلغاء",
		"Confirm": "تأكيد", "Select": "اختر", "Choose": "اختر",
		"Add": "إضافة", "Remove": "إزالة", "Edit": "تعديل",
		"Delete": "حذف",

		// Status
		"Error": "خطأ", "Warning": "تحذير", "Success": "نجح",
		"Failed": "فشل", "Loading": "جاري التحميل",

		// Currencies
		"USD": "دولار أمريكي", "EUR": "يورو",
		"SAR": "ريال سعودي", "AED": "درهم إماراتي",
		"EGP": "جنيه مصري", "KWD": "دينار كويتي",
		"QAR": "ريال قطري", "BHD": "دينار بحريني",
		"OMR": "ريال عماني", "JOD": "دينار أردني",
		"LBP": "ليرة لبنانية", "IQD": "دينار عراقي",
		"Currency Symbol": "رمز العملة",

		// Help content
		"Question": "السؤال", "Answer": "الإجابة",
		"Help": "مساعدة", "Info": "معلومات",
		"Tips": "نصائح", "Examples": "أمثلة",
		"Formula": "الصيغة", "How It Works": "كيف يعمل",

		// Money
		"Net": "صافي", "Gross": "إجمالي", "Tax": "الضريبة",
		"Fee": "الرسوم", "Charge": "الرسم", "Discount": "الخصم",
		"Bonus": "المكافأة", "Penalty": "الغرامة",
	}
}
