package dto

type Profile struct {
	BusinessName  string `json:"business_name" example:"Loudachris Electrical"`
	ABN           string `json:"abn" example:"51 824 753 556"`
	GSTRegistered bool   `json:"gst_registered" example:"true"`
	LogoBase64    string `json:"logo_base64,omitempty" swaggertype:"string"`
	Email         string `json:"email,omitempty" example:"chris@example.com"`
}

type Message struct {
	Message string `json:"message" example:"Profile saved successfully"`
}
