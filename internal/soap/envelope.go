package soap

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"text/template"

	xrv "github.com/mattermost/xml-roundtrip-validator"
)

const (
	StudyPath        = "/LibreClinica/ws/study/v1"
	StudySubjectPath = "/LibreClinica/ws/studySubject/v1"
)

// Headers sent with authenticated envelopes.
var Headers = map[string]string{"SOAPAction": `""`}

var envelopes = template.Must(template.New("soap").Parse(`
{{- define "security" -}}
  <soapenv:Header>
    <wsse:Security>
      <wsse:UsernameToken>
        <wsse:Username>{{.Username}}</wsse:Username>
        <wsse:Password Type="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText">{{.PasswordHash}}</wsse:Password>
      </wsse:UsernameToken>
    </wsse:Security>
  </soapenv:Header>
{{- end -}}

{{- define "studyList" -}}
<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"
                  xmlns:v1="http://openclinica.org/ws/study/v1"
                  xmlns:wsse="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd">
{{template "security" .}}
  <soapenv:Body>
    <v1:listAllRequest/>
  </soapenv:Body>
</soapenv:Envelope>
{{- end -}}

{{- define "studySubjects" -}}
<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"
                  xmlns:v1="http://openclinica.org/ws/studySubject/v1"
                  xmlns:wsse="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
                  xmlns:bean="http://openclinica.org/ws/beans">
{{template "security" .}}
  <soapenv:Body>
    <v1:listAllByStudyRequest>
      <v1:studyRef>
        <bean:identifier>{{.StudyIdentifier}}</bean:identifier>
      </v1:studyRef>
    </v1:listAllByStudyRequest>
  </soapenv:Body>
</soapenv:Envelope>
{{- end -}}

{{- define "noAuth" -}}
<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"
                  xmlns:v1="http://openclinica.org/ws/study/v1">
  <soapenv:Header></soapenv:Header>
  <soapenv:Body>
    <v1:listAllRequest/>
  </soapenv:Body>
</soapenv:Envelope>
{{- end -}}
`))

type Credentials struct {
	Username     string
	PasswordHash string
}

type envelopeData struct {
	Credentials
	StudyIdentifier string
}

// PasswordDigest is the hex MD5 of a password, the form the SOAP services
// expect in the UsernameToken.
func PasswordDigest(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

func StudyListEnvelope(c Credentials) (string, error) {
	return render("studyList", envelopeData{Credentials: c})
}

func StudySubjectsEnvelope(c Credentials, studyIdentifier string) (string, error) {
	return render("studySubjects", envelopeData{Credentials: c, StudyIdentifier: studyIdentifier})
}

func NoAuthEnvelope() (string, error) {
	return render("noAuth", envelopeData{})
}

func render(name string, data envelopeData) (string, error) {
	var buf bytes.Buffer
	if err := envelopes.ExecuteTemplate(&buf, name, escaped(data)); err != nil {
		return "", err
	}
	if err := xrv.Validate(bytes.NewReader(buf.Bytes())); err != nil {
		return "", fmt.Errorf("envelope %s: %w", name, err)
	}
	return buf.String(), nil
}

func escaped(d envelopeData) envelopeData {
	return envelopeData{
		Credentials: Credentials{
			Username:     escapeText(d.Username),
			PasswordHash: escapeText(d.PasswordHash),
		},
		StudyIdentifier: escapeText(d.StudyIdentifier),
	}
}

func escapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
