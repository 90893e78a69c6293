package textparse

// DemoTranscript is a canned OCR transcript used when no bill bytes are
// supplied (demo/mock mode). It exercises every section the parser knows.
const DemoTranscript = `CITY GENERAL HOSPITAL
123 MG Road, Bengaluru 560001
GSTIN: 29ABCDE1234F1Z5
Phone: 080-22334455
Bill No: IP-2024-00817
Patient Name: Ramesh Kumar
Age/Sex: 46/M
Admission Date: 12/03/2024
Discharge Date: 18/03/2024

PHARMACY
1. Paracetamol 500mg Tab Qty:10 2.50 25.00
2. Azithromycin 500mg Tab Qty:3 32.00 96.00
3. Pantoprazole 40mg Tab Qty:5 9.00 45.00
4. Ceftriaxone 1g Injection Qty:2 95.00 190.00
5. Normal Saline 500ml IV Qty:4 45.00 180.00

LABORATORY
6. Complete Blood Count (CBC) 350.00
7. Lipid Profile 850.00
8. Liver Function Test 750.00
9. X-Ray Chest PA View 400.00

ROOM CHARGES
10. Private Room 3 x 5500.00 16500.00

CONSULTATION
11. General Physician Visits 2 x 800.00 1600.00

NURSING CHARGES
12. Nursing Care 6 x 550.00 3300.00

CONSUMABLES
13. Disposable Syringe 5ml Qty:12 10.00 120.00
14. IV Cannula Qty:2 60.00 120.00

Sub Total: 24536.00
Discount: 500.00
CGST @ 9%: 125.00
SGST @ 9%: 125.00
Grand Total: 24286.00

Payment Mode: Card
Bill Date: 18/03/2024
Authorised Signatory
CITY GENERAL HOSPITAL`
