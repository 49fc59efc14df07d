package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

const cbrSOAPEndpoint = "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"

// buildKeyRateRequest формирует SOAP-запрос ключевой ставки за последние сутки
func buildKeyRateRequest() string {
	now := time.Now()
	from := now.AddDate(0, 0, -30).Format("2006-01-02")
	to := now.Format("2006-01-02")

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	envelope := doc.CreateElement("soap12:Envelope")
	envelope.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	envelope.CreateAttr("xmlns:xsd", "http://www.w3.org/2001/XMLSchema")
	envelope.CreateAttr("xmlns:soap12", "http://www.w3.org/2003/05/soap-envelope")

	body := envelope.CreateElement("soap12:Body")
	keyRate := body.CreateElement("KeyRate")
	keyRate.CreateAttr("xmlns", "http://web.cbr.ru/")
	keyRate.CreateElement("fromDate").SetText(from)
	keyRate.CreateElement("ToDate").SetText(to)

	out, _ := doc.WriteToString()
	return out
}

// GetCentralBankRate возвращает текущую ключевую ставку центрального банка
func GetCentralBankRate() (float64, error) {
	request := buildKeyRateRequest()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(cbrSOAPEndpoint, "application/soap+xml; charset=utf-8", strings.NewReader(request))
	if err != nil {
		return 0, fmt.Errorf("ошибка запроса к центральному банку: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("центральный банк вернул статус %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.New("ошибка чтения ответа центрального банка")
	}

	return parseKeyRateResponse(payload)
}

// parseKeyRateResponse извлекает последнее значение ставки из SOAP-ответа
func parseKeyRateResponse(payload []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(payload); err != nil {
		return 0, errors.New("не удалось разобрать ответ центрального банка")
	}

	// Записи идут в хронологическом порядке, берем последнюю
	rates := doc.FindElements("//KR/Rate")
	if len(rates) == 0 {
		return 0, errors.New("в ответе центрального банка нет значений ставки")
	}

	raw := strings.TrimSpace(rates[len(rates)-1].Text())
	raw = strings.ReplaceAll(raw, ",", ".")
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("некорректное значение ставки в ответе центрального банка")
	}

	return rate, nil
}
