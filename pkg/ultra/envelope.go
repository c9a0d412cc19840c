package ultra

import "encoding/xml"

// requestEnvelope is a SOAP 1.1 envelope around a single operation element.
type requestEnvelope struct {
	XMLName xml.Name    `xml:"soap:Envelope"`
	SoapNS  string      `xml:"xmlns:soap,attr"`
	Body    requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Content any
}

// requestDataRequest asks the service to prepare a dataset.
type requestDataRequest struct {
	XMLName              xml.Name
	Service              string  `xml:"Service"`
	All                  bool    `xml:"all"`
	AdditionalParameters *string `xml:"additionalParameters,omitempty"`
	Compress             bool    `xml:"compress"`
}

// idRequest is shared by isReady and getDataByID.
type idRequest struct {
	XMLName xml.Name
	ID      string `xml:"ID"`
}

// serviceRequest is used by CommitReceivingData.
type serviceRequest struct {
	XMLName xml.Name
	Service string `xml:"Service"`
}

type responseEnvelope struct {
	XMLName xml.Name     `xml:"Envelope"`
	Body    responseBody `xml:"Body"`
}

type responseBody struct {
	Fault   *Fault `xml:"Fault"`
	Content []byte `xml:",innerxml"`
}

// Fault is a SOAP fault returned by the service.
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

type returnResponse struct {
	Return string `xml:"return"`
}

type dataFields struct {
	Message string `xml:"message"`
	Data    string `xml:"data"`
}

// dataResponse accepts message/data either directly under the operation
// response or wrapped in a return element.
type dataResponse struct {
	Message string      `xml:"message"`
	Data    string      `xml:"data"`
	Return  *dataFields `xml:"return"`
}
