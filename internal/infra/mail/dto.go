package mail

type ResearchEmailData struct {
	CompanyName    string
	ContactName    string
	Status         string
	Overview       string
	PainPoints     []string
	DecisionMakers []string
	RecentNews     string
	OutreachAngle  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// To is the sales inbox that receives research digests.
	To string
}
